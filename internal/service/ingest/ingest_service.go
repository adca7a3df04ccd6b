package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/Domenick1991/ragbooking/internal/llm"
	"github.com/Domenick1991/ragbooking/internal/repository"
	"github.com/Domenick1991/ragbooking/internal/vectorstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const statusIngested = "Document ingested successfully"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type, please upload a PDF or TXT file")
	ErrUnknownStrategy     = errors.New("unknown chunking strategy")
	ErrNoChunks            = errors.New("chunking failed, no chunks created")
	ErrExtractText         = errors.New("failed to extract text from file")
	ErrEmbedding           = errors.New("embedding failed")
	ErrVectorStore         = errors.New("failed to store vectors")
)

type IngestUseCase interface {
	Ingest(ctx context.Context, input IngestInput) (*IngestResult, error)
}

type IngestInput struct {
	Filename    string
	ContentType string
	Data        []byte
	Strategy    domain.ChunkStrategy
}

type IngestResult struct {
	DocumentID       string               `json:"document_id"`
	ExternalID       string               `json:"external_id"`
	ChunkingStrategy domain.ChunkStrategy `json:"chunking_strategy"`
	NumChunks        int                  `json:"num_chunks"`
	Status           string               `json:"status"`
}

type Service struct {
	embedder  llm.Embedder
	store     vectorstore.Store
	documents repository.DocumentRepository
	newID     func() string
	log       *zap.Logger
}

func NewService(embedder llm.Embedder, store vectorstore.Store, documents repository.DocumentRepository, log *zap.Logger) *Service {
	return &Service{
		embedder:  embedder,
		store:     store,
		documents: documents,
		newID:     func() string { return uuid.New().String() },
		log:       log,
	}
}

// Ingest extracts, chunks and embeds an uploaded file, records its metadata
// and stores one vector per chunk under a fresh external id.
func (s *Service) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	log := s.log.With(zap.String("filename", input.Filename))

	fileType, ok := DetectFileType(input.ContentType, input.Filename)
	if !ok {
		log.Warn("unsupported upload", zap.String("content_type", input.ContentType))
		return nil, ErrUnsupportedFileType
	}
	if input.Strategy == "" {
		input.Strategy = domain.ChunkFixed
	}

	text, err := ExtractText(input.Data, fileType)
	if err != nil {
		log.Error("text extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExtractText, err)
	}

	chunks, err := ChunkText(text, input.Strategy)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		log.Error("embedding failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", ErrEmbedding, len(embeddings), len(chunks))
	}

	externalID := s.newID()
	doc := &domain.Document{
		ExternalID:  externalID,
		Filename:    input.Filename,
		ContentType: input.ContentType,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		log.Error("failed to persist document metadata", zap.Error(err))
		return nil, fmt.Errorf("persist document metadata: %w", err)
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:     s.newID(),
			Vector: embeddings[i],
			Payload: vectorstore.Payload{
				Text:       chunk,
				DocumentID: externalID,
				ChunkID:    i,
				Filename:   input.Filename,
			},
		}
	}
	if err := s.store.Upsert(ctx, points); err != nil {
		log.Error("failed to store vectors", zap.String("external_id", externalID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrVectorStore, err)
	}

	log.Info("document ingested",
		zap.String("external_id", externalID),
		zap.String("strategy", string(input.Strategy)),
		zap.Int("chunks", len(chunks)),
		zap.Int("characters", len(strings.TrimSpace(text))),
	)
	return &IngestResult{
		DocumentID:       externalID,
		ExternalID:       externalID,
		ChunkingStrategy: input.Strategy,
		NumChunks:        len(chunks),
		Status:           statusIngested,
	}, nil
}

var _ IngestUseCase = (*Service)(nil)
