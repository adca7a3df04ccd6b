package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByExternalID(ctx context.Context, externalID string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

type PGDocumentRepository struct {
	db DB
}

func NewDocumentRepository(db DB) DocumentRepository {
	return &PGDocumentRepository{db: db}
}

func (r *PGDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	err := r.db.QueryRow(ctx, `INSERT INTO documents (external_id, filename, content_type)
		VALUES ($1, $2, $3)
		RETURNING id, uploaded_at`, doc.ExternalID, doc.Filename, doc.ContentType).
		Scan(&doc.ID, &doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *PGDocumentRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Document, error) {
	row := r.db.QueryRow(ctx, `SELECT id, external_id, filename, content_type, uploaded_at FROM documents WHERE external_id=$1`, externalID)
	var d domain.Document
	if err := row.Scan(&d.ID, &d.ExternalID, &d.Filename, &d.ContentType, &d.UploadedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGDocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.Query(ctx, `SELECT id, external_id, filename, content_type, uploaded_at FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.ExternalID, &d.Filename, &d.ContentType, &d.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

var _ DocumentRepository = (*PGDocumentRepository)(nil)
