package email

import (
	"context"
	"errors"

	"github.com/Domenick1991/ragbooking/internal/kafka"
	"go.uber.org/zap"
)

type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

// Send delivers the booking confirmation. Delivery is a log line until a
// mail provider is configured.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		return errors.New("booking event has no recipient")
	}
	s.log.Info("send booking confirmation",
		zap.String("to", event.Email),
		zap.String("type", event.Type),
		zap.Int64("booking_id", event.BookingID),
		zap.Time("meeting_at", event.MeetingAt),
	)
	return nil
}
