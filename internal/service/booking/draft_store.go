package booking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"go.uber.org/zap"
)

const draftKeyPrefix = "booking_draft:"

const DefaultDraftTTL = time.Hour

// KV is the slice of the cache the draft store needs. Get returns nil, nil
// for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DraftStore keeps partially collected bookings per session. Cache failures
// are logged and swallowed: reads come back empty, writes are dropped.
type DraftStore struct {
	kv  KV
	ttl time.Duration
	log *zap.Logger
}

func NewDraftStore(kv KV, ttl time.Duration, log *zap.Logger) *DraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore{kv: kv, ttl: ttl, log: log}
}

func (s *DraftStore) Load(ctx context.Context, sessionID string) domain.BookingDraft {
	draft, _ := s.load(ctx, sessionID)
	return draft
}

// Exists reports whether a draft record is stored for the session, even one
// with no slots filled yet.
func (s *DraftStore) Exists(ctx context.Context, sessionID string) bool {
	_, found := s.load(ctx, sessionID)
	return found
}

func (s *DraftStore) Save(ctx context.Context, sessionID string, draft domain.BookingDraft) {
	payload, err := json.Marshal(draft)
	if err != nil {
		s.log.Error("encode booking draft", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, draftKey(sessionID), payload, s.ttl); err != nil {
		s.log.Warn("failed to save booking draft", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *DraftStore) Clear(ctx context.Context, sessionID string) {
	if err := s.kv.Delete(ctx, draftKey(sessionID)); err != nil {
		s.log.Warn("failed to clear booking draft", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *DraftStore) load(ctx context.Context, sessionID string) (domain.BookingDraft, bool) {
	raw, err := s.kv.Get(ctx, draftKey(sessionID))
	if err != nil {
		s.log.Warn("failed to load booking draft", zap.String("session_id", sessionID), zap.Error(err))
		return domain.BookingDraft{}, false
	}
	if raw == nil {
		return domain.BookingDraft{}, false
	}

	var draft domain.BookingDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		s.log.Warn("discarding unreadable booking draft", zap.String("session_id", sessionID), zap.Error(err))
		return domain.BookingDraft{}, false
	}
	return draft, true
}

func draftKey(sessionID string) string {
	return draftKeyPrefix + sessionID
}
