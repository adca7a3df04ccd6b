package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/Domenick1991/ragbooking/internal/kafka"
	"github.com/Domenick1991/ragbooking/internal/repository"
	"go.uber.org/zap"
)

const defaultPersistTimeout = 5 * time.Second

type BookingUseCase interface {
	HandleBooking(ctx context.Context, sessionID, userText string) (*Result, error)
	HasDraft(ctx context.Context, sessionID string) bool
}

type SlotExtractor interface {
	Extract(ctx context.Context, text string) domain.BookingDraft
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Result is the outcome of one booking turn. Error is false only when a
// booking was committed.
type Result struct {
	Error     bool                 `json:"error"`
	Kind      Kind                 `json:"-"`
	Message   string               `json:"message"`
	Missing   []string             `json:"missing,omitempty"`
	Collected *domain.BookingDraft `json:"collected,omitempty"`
	BookingID int64                `json:"booking_id,omitempty"`
	Name      string               `json:"name,omitempty"`
	Email     string               `json:"email,omitempty"`
	DateTime  *time.Time           `json:"datetime,omitempty"`
}

type BookingService struct {
	drafts             *DraftStore
	extractor          SlotExtractor
	normalizer         *Normalizer
	bookings           repository.BookingRepository
	producer           Producer
	notificationsTopic string
	persistTimeout     time.Duration
	log                *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotifications(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.notificationsTopic = topic
	}
}

func WithPersistTimeout(timeout time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if timeout > 0 {
			s.persistTimeout = timeout
		}
	}
}

func NewBookingService(
	drafts *DraftStore,
	extractor SlotExtractor,
	normalizer *Normalizer,
	bookings repository.BookingRepository,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		drafts:         drafts,
		extractor:      extractor,
		normalizer:     normalizer,
		bookings:       bookings,
		persistTimeout: defaultPersistTimeout,
		log:            log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) HasDraft(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	return s.drafts.Exists(ctx, sessionID)
}

// HandleBooking runs one turn of the booking dialogue: merge what this
// message adds to the stored draft, ask for whatever is still missing and
// commit the booking once every slot resolves.
func (s *BookingService) HandleBooking(ctx context.Context, sessionID, userText string) (*Result, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionRequired
	}
	log := s.log.With(zap.String("session_id", sessionID))
	log.Info("handling booking turn")

	draft := s.drafts.Load(ctx, sessionID)
	merged := draft.Merge(s.extractor.Extract(ctx, userText))

	if missing := merged.Missing(); len(missing) > 0 {
		s.drafts.Save(ctx, sessionID, merged)
		log.Info("booking info still missing", zap.Any("missing", missing))
		return &Result{
			Error:     true,
			Kind:      KindCollecting,
			Message:   missingMessage(missing),
			Missing:   fieldNames(missing),
			Collected: &merged,
		}, nil
	}

	normalized, ok := s.normalizer.Normalize(merged.Date, merged.Time)
	if !ok {
		s.drafts.Save(ctx, sessionID, merged)
		log.Info("could not normalize booking date/time", zap.String("date", merged.Date), zap.String("time", merged.Time))
		return &Result{
			Error:     true,
			Kind:      KindNormalizationFailed,
			Message:   normalizationFailedMessage,
			Missing:   []string{string(domain.FieldDate), string(domain.FieldTime)},
			Collected: &merged,
		}, nil
	}

	meetingAt, err := normalized.In(s.normalizer.Location())
	if err != nil {
		s.drafts.Save(ctx, sessionID, merged)
		log.Warn("normalized date/time did not combine", zap.Error(err))
		return &Result{
			Error:     true,
			Kind:      KindNormalizationFailed,
			Message:   normalizationFailedMessage,
			Missing:   []string{string(domain.FieldDate), string(domain.FieldTime)},
			Collected: &merged,
		}, nil
	}

	booking := &domain.Booking{
		SessionID: sessionID,
		Name:      merged.Name,
		Email:     merged.Email,
		MeetingAt: meetingAt,
		Notes:     userText,
	}
	if err := s.persist(ctx, booking); err != nil {
		s.drafts.Save(ctx, sessionID, merged)
		log.Error("failed to persist booking", zap.Error(err))
		return &Result{
			Error:     true,
			Kind:      KindPersistence,
			Message:   fmt.Sprintf("Failed to persist booking: %v", err),
			Collected: &merged,
		}, nil
	}

	s.drafts.Clear(ctx, sessionID)
	log.Info("booking saved", zap.Int64("booking_id", booking.ID), zap.Time("meeting_at", meetingAt))

	if err := s.publish(ctx, booking); err != nil {
		log.Warn("failed to publish booking_created event", zap.Int64("booking_id", booking.ID), zap.Error(err))
	}

	return &Result{
		Error:     false,
		Kind:      KindBooked,
		Message:   confirmationMessage(merged.Name, merged.Email, meetingAt),
		BookingID: booking.ID,
		Name:      merged.Name,
		Email:     merged.Email,
		DateTime:  &meetingAt,
	}, nil
}

func (s *BookingService) persist(ctx context.Context, booking *domain.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()
	return s.bookings.Create(ctx, booking)
}

func (s *BookingService) publish(ctx context.Context, booking *domain.Booking) error {
	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:      kafka.EventBookingCreated,
		BookingID: booking.ID,
		SessionID: booking.SessionID,
		Name:      booking.Name,
		Email:     booking.Email,
		MeetingAt: booking.MeetingAt,
	}
	return s.producer.Publish(ctx, s.notificationsTopic, booking.SessionID, event)
}

func fieldNames(fields []domain.BookingField) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}

var _ BookingUseCase = (*BookingService)(nil)
