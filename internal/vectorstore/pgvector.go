package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// DB is the part of pgxpool.Pool the pgvector store uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var pgvectorSchema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS document_chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		chunk_id INTEGER NOT NULL,
		filename TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL,
		embedding vector NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS document_chunks_document_id_idx ON document_chunks (document_id)`,
}

const upsertChunkSQL = `INSERT INTO document_chunks (id, document_id, chunk_id, filename, text, embedding)
	VALUES ($1, $2, $3, $4, $5, $6::text::vector)
	ON CONFLICT (id) DO UPDATE SET
		document_id = EXCLUDED.document_id,
		chunk_id = EXCLUDED.chunk_id,
		filename = EXCLUDED.filename,
		text = EXCLUDED.text,
		embedding = EXCLUDED.embedding`

// <=> is pgvector's cosine distance, so 1 - distance is the similarity.
const searchChunksSQL = `SELECT text, document_id, chunk_id, 1 - (embedding <=> $1::text::vector) AS score
	FROM document_chunks
	WHERE ($2 = '' OR document_id = $2)
	ORDER BY embedding <=> $1::text::vector, document_id, chunk_id
	LIMIT $3`

// PGVector keeps chunk vectors in Postgres next to the document metadata,
// using the pgvector extension.
type PGVector struct {
	db DB
}

func NewPGVector(db DB) *PGVector {
	return &PGVector{db: db}
}

// EnsureSchema enables the vector extension and creates the chunk table.
func (s *PGVector) EnsureSchema(ctx context.Context) error {
	for _, stmt := range pgvectorSchema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure vector schema: %w", err)
		}
	}
	return nil
}

func (s *PGVector) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	dim := len(points[0].Vector)
	for _, p := range points {
		if len(p.Vector) == 0 {
			return fmt.Errorf("point %s: empty vector", p.ID)
		}
		if len(p.Vector) != dim {
			return fmt.Errorf("point %s: %w: got %d, want %d", p.ID, ErrDimensionMismatch, len(p.Vector), dim)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range points {
		if _, err := tx.Exec(ctx, upsertChunkSQL,
			p.ID, p.Payload.DocumentID, p.Payload.ChunkID, p.Payload.Filename, p.Payload.Text,
			pgvector.NewVector(p.Vector).String(),
		); err != nil {
			return fmt.Errorf("upsert point %s: %w", p.ID, dimensionError(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit points: %w", err)
	}
	return nil
}

// Search treats topK <= 0 as no limit.
func (s *PGVector) Search(ctx context.Context, vector []float32, topK int, documentID string) ([]domain.RetrievedChunk, error) {
	var limit any
	if topK > 0 {
		limit = topK
	}

	rows, err := s.db.Query(ctx, searchChunksSQL, pgvector.NewVector(vector).String(), documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", dimensionError(err))
	}
	defer rows.Close()

	results := make([]domain.RetrievedChunk, 0)
	for rows.Next() {
		var c domain.RetrievedChunk
		if err := rows.Scan(&c.Text, &c.DocumentID, &c.ChunkID, &c.Score); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search chunks: %w", dimensionError(err))
	}
	return results, nil
}

// Delete drops every chunk of a document.
func (s *PGVector) Delete(ctx context.Context, documentID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// dimensionError maps pgvector's dimension complaint onto ErrDimensionMismatch.
func dimensionError(err error) error {
	if strings.Contains(err.Error(), "different vector dimensions") {
		return fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}
	return err
}

var _ Store = (*PGVector)(nil)
