package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/Domenick1991/ragbooking/internal/llm"
	"github.com/Domenick1991/ragbooking/internal/vectorstore"
	"go.uber.org/zap"
)

const (
	defaultTopK         = 5
	defaultHistoryTurns = 6
)

var (
	ErrRetrievalFailed  = errors.New("retrieval failed")
	ErrGenerationFailed = errors.New("llm call failed")
)

// History is the per-session chat log.
type History interface {
	AppendMessage(ctx context.Context, sessionID string, msg domain.ChatMessage) error
	History(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)
}

type Answer struct {
	Answer  string                  `json:"answer"`
	Sources []domain.RetrievedChunk `json:"sources"`
}

type Service struct {
	embedder     llm.Embedder
	store        vectorstore.Store
	llm          llm.Generator
	history      History
	topK         int
	historyTurns int
	log          *zap.Logger
}

type Option func(*Service)

func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

func WithHistoryTurns(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyTurns = n
		}
	}
}

func NewService(embedder llm.Embedder, store vectorstore.Store, generator llm.Generator, history History, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		embedder:     embedder,
		store:        store,
		llm:          generator,
		history:      history,
		topK:         defaultTopK,
		historyTurns: defaultHistoryTurns,
		log:          log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer retrieves context for the question and asks the model to answer it.
// History reads and writes are best effort.
func (s *Service) Answer(ctx context.Context, sessionID, question, documentID string) (*Answer, error) {
	documentID = strings.TrimSpace(documentID)
	log := s.log.With(zap.String("session_id", sessionID))
	log.Info("answering question", zap.String("document_id", documentID))

	s.remember(ctx, sessionID, domain.ChatMessage{Role: domain.RoleUser, Content: question})
	history, err := s.history.History(ctx, sessionID, s.historyTurns)
	if err != nil {
		log.Warn("chat history unavailable", zap.Error(err))
		history = nil
	}

	chunks, err := s.retrieve(ctx, question, documentID)
	if err != nil {
		log.Error("retrieval failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	answer, err := s.llm.Generate(ctx, BuildPrompt(history, chunks, question, s.historyTurns))
	if err != nil {
		log.Error("llm call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	s.remember(ctx, sessionID, domain.ChatMessage{Role: domain.RoleAssistant, Content: answer})
	log.Debug("rag answer produced", zap.Int("sources", len(chunks)))
	return &Answer{Answer: answer, Sources: chunks}, nil
}

func (s *Service) retrieve(ctx context.Context, question, documentID string) ([]domain.RetrievedChunk, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	chunks, err := s.store.Search(ctx, vector, s.topK, documentID)
	if err != nil {
		return nil, fmt.Errorf("search vectors: %w", err)
	}
	return chunks, nil
}

func (s *Service) remember(ctx context.Context, sessionID string, msg domain.ChatMessage) {
	if err := s.history.AppendMessage(ctx, sessionID, msg); err != nil {
		s.log.Warn("failed to append chat history", zap.String("session_id", sessionID), zap.String("role", msg.Role), zap.Error(err))
	}
}
