package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/Domenick1991/ragbooking/internal/service/booking"
	"github.com/Domenick1991/ragbooking/internal/service/rag"
	"go.uber.org/zap"
)

var (
	ErrInvalidMessage = errors.New("session_id and query are required")
	ErrBookingFailed  = errors.New("booking pipeline failed")
	ErrChatFailed     = errors.New("chat pipeline failed")
)

type ChatUseCase interface {
	Handle(ctx context.Context, msg Message) (*Response, error)
}

type Answerer interface {
	Answer(ctx context.Context, sessionID, question, documentID string) (*rag.Answer, error)
}

type Message struct {
	SessionID  string `json:"session_id"`
	Query      string `json:"query"`
	DocumentID string `json:"document_id,omitempty"`
}

type Response struct {
	Answer  string                  `json:"answer"`
	Sources []domain.RetrievedChunk `json:"sources"`
	Booking *booking.Result         `json:"booking,omitempty"`
}

type Service struct {
	booking booking.BookingUseCase
	rag     Answerer
	log     *zap.Logger
}

func NewService(bookings booking.BookingUseCase, answerer Answerer, log *zap.Logger) *Service {
	return &Service{booking: bookings, rag: answerer, log: log}
}

// Handle sends the message down the booking dialogue when it asks for a
// booking or a draft is already open for the session, and answers it from
// the documents otherwise.
func (s *Service) Handle(ctx context.Context, msg Message) (*Response, error) {
	if strings.TrimSpace(msg.SessionID) == "" || strings.TrimSpace(msg.Query) == "" {
		return nil, ErrInvalidMessage
	}

	if booking.IsBookingRequest(msg.Query) || s.booking.HasDraft(ctx, msg.SessionID) {
		return s.handleBooking(ctx, msg)
	}

	answer, err := s.rag.Answer(ctx, msg.SessionID, msg.Query, msg.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChatFailed, err)
	}
	sources := answer.Sources
	if sources == nil {
		sources = []domain.RetrievedChunk{}
	}
	return &Response{Answer: answer.Answer, Sources: sources}, nil
}

func (s *Service) handleBooking(ctx context.Context, msg Message) (*Response, error) {
	result, err := s.booking.HandleBooking(ctx, msg.SessionID, msg.Query)
	if err != nil {
		s.log.Error("booking turn failed", zap.String("session_id", msg.SessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}

	answer := result.Message
	if answer == "" && !result.Error && result.DateTime != nil {
		answer = fmt.Sprintf("Booking confirmed for %s.", result.DateTime.Format("2006-01-02 at 15:04"))
	}
	return &Response{
		Answer:  answer,
		Sources: []domain.RetrievedChunk{},
		Booking: result,
	}, nil
}

var _ ChatUseCase = (*Service)(nil)
