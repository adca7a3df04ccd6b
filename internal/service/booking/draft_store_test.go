package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

type failingKV struct{}

var errCacheDown = errors.New("cache down")

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errCacheDown }

func (failingKV) Set(context.Context, string, []byte, time.Duration) error { return errCacheDown }

func (failingKV) Delete(context.Context, string) error { return errCacheDown }

func TestDraftStore_RoundTrip(t *testing.T) {
	kv := newMemKV()
	store := NewDraftStore(kv, 30*time.Minute, zap.NewNop())
	ctx := context.Background()

	assert.False(t, store.Exists(ctx, "s1"))
	assert.Equal(t, domain.BookingDraft{}, store.Load(ctx, "s1"))

	draft := domain.BookingDraft{Name: "Bibek", Time: "3pm"}
	store.Save(ctx, "s1", draft)

	assert.True(t, store.Exists(ctx, "s1"))
	assert.Equal(t, draft, store.Load(ctx, "s1"))
	assert.Equal(t, 30*time.Minute, kv.ttls["booking_draft:s1"])
	assert.False(t, store.Exists(ctx, "s2"))
}

func TestDraftStore_EmptyDraftStillExists(t *testing.T) {
	store := NewDraftStore(newMemKV(), 0, zap.NewNop())
	ctx := context.Background()

	store.Save(ctx, "s1", domain.BookingDraft{})

	assert.True(t, store.Exists(ctx, "s1"))
}

func TestDraftStore_ClearIsIdempotent(t *testing.T) {
	store := NewDraftStore(newMemKV(), 0, zap.NewNop())
	ctx := context.Background()

	store.Save(ctx, "s1", domain.BookingDraft{Email: "a@b.co"})
	store.Clear(ctx, "s1")
	store.Clear(ctx, "s1")

	assert.False(t, store.Exists(ctx, "s1"))
	assert.Equal(t, domain.BookingDraft{}, store.Load(ctx, "s1"))
}

func TestDraftStore_DefaultTTL(t *testing.T) {
	kv := newMemKV()
	store := NewDraftStore(kv, 0, zap.NewNop())

	store.Save(context.Background(), "s1", domain.BookingDraft{Name: "A"})

	assert.Equal(t, DefaultDraftTTL, kv.ttls["booking_draft:s1"])
}

func TestDraftStore_UnreadableDraftIsDiscarded(t *testing.T) {
	kv := newMemKV()
	kv.data["booking_draft:s1"] = []byte("{broken")
	store := NewDraftStore(kv, 0, zap.NewNop())

	assert.False(t, store.Exists(context.Background(), "s1"))
	assert.Equal(t, domain.BookingDraft{}, store.Load(context.Background(), "s1"))
}

func TestDraftStore_CacheOutageIsSwallowed(t *testing.T) {
	store := NewDraftStore(failingKV{}, 0, zap.NewNop())
	ctx := context.Background()

	assert.NotPanics(t, func() {
		store.Save(ctx, "s1", domain.BookingDraft{Name: "A"})
		store.Clear(ctx, "s1")
	})
	assert.False(t, store.Exists(ctx, "s1"))
	assert.Equal(t, domain.BookingDraft{}, store.Load(ctx, "s1"))
}
