package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of pgxpool.Pool the repositories use.
type DB interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

// Create inserts the booking inside a transaction and fills ID and
// CreatedAt. Any failure before commit rolls the insert back.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (session_id, name, email, meeting_datetime, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`, booking.SessionID, booking.Name, booking.Email, booking.MeetingAt, booking.Notes).
		Scan(&booking.ID, &booking.CreatedAt); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
