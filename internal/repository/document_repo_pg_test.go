package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var documentColumns = []string{"id", "external_id", "filename", "content_type", "uploaded_at"}

func TestPGDocumentRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	uploadedAt := time.Date(2026, 10, 14, 4, 0, 0, 0, time.UTC)
	doc := &domain.Document{ExternalID: "ext-1", Filename: "faq.txt", ContentType: "text/plain"}

	// Настройка моков
	mock.ExpectQuery(`INSERT INTO documents`).
		WithArgs("ext-1", "faq.txt", "text/plain").
		WillReturnRows(pgxmock.NewRows([]string{"id", "uploaded_at"}).AddRow(int64(3), uploadedAt))

	// Выполнение
	err = NewDocumentRepository(mock).Create(context.Background(), doc)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, int64(3), doc.ID)
	assert.Equal(t, uploadedAt, doc.UploadedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGDocumentRepository_CreateError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dupErr := errors.New("duplicate key value violates unique constraint")
	mock.ExpectQuery(`INSERT INTO documents`).WillReturnError(dupErr)

	err = NewDocumentRepository(mock).Create(context.Background(), &domain.Document{ExternalID: "ext-1"})

	assert.ErrorIs(t, err, dupErr)
	assert.ErrorContains(t, err, "insert document")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGDocumentRepository_GetByExternalID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	uploadedAt := time.Date(2026, 10, 14, 4, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, external_id, filename, content_type, uploaded_at FROM documents WHERE external_id`).
		WithArgs("ext-1").
		WillReturnRows(pgxmock.NewRows(documentColumns).AddRow(int64(3), "ext-1", "faq.txt", "text/plain", uploadedAt))

	doc, err := NewDocumentRepository(mock).GetByExternalID(context.Background(), "ext-1")

	require.NoError(t, err)
	assert.Equal(t, &domain.Document{ID: 3, ExternalID: "ext-1", Filename: "faq.txt", ContentType: "text/plain", UploadedAt: uploadedAt}, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGDocumentRepository_GetByExternalIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM documents WHERE external_id`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(documentColumns))

	_, err = NewDocumentRepository(mock).GetByExternalID(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGDocumentRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	newer := time.Date(2026, 10, 14, 5, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(`FROM documents ORDER BY uploaded_at DESC`).
		WillReturnRows(pgxmock.NewRows(documentColumns).
			AddRow(int64(2), "ext-2", "b.pdf", "application/pdf", newer).
			AddRow(int64(1), "ext-1", "a.txt", "text/plain", older))

	docs, err := NewDocumentRepository(mock).List(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "ext-2", docs[0].ExternalID)
	assert.Equal(t, older, docs[1].UploadedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGDocumentRepository_ListEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM documents`).WillReturnRows(pgxmock.NewRows(documentColumns))

	docs, err := NewDocumentRepository(mock).List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestSchemaStatements(t *testing.T) {
	joined := strings.Join(schemaStatements, "\n")
	assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS bookings")
	assert.Contains(t, joined, "meeting_datetime TIMESTAMPTZ NOT NULL")
	assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS documents")
	assert.Contains(t, joined, "external_id TEXT NOT NULL UNIQUE")
}
