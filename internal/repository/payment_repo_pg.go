package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meridianair/booking/internal/domain"
)

type PaymentRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	Create(ctx context.Context, p *domain.Payment) error
	MarkRefunded(ctx context.Context, bookingID int64) error
}

type PGPaymentRepository struct {
	db DB
}

func NewPaymentRepository(db DB) *PGPaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.QueryRow(ctx, `SELECT stripe_id, booking_id, refunded, created_at FROM payments WHERE booking_id=$1`, bookingID).
		Scan(&p.StripeID, &p.BookingID, &p.Refunded, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment for booking %d", domain.ErrNotFound, bookingID)
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.QueryRow(ctx, `INSERT INTO payments (stripe_id, booking_id, refunded)
		VALUES ($1, $2, $3)
		RETURNING created_at`, p.StripeID, p.BookingID, p.Refunded).Scan(&p.CreatedAt)
}

func (r *PGPaymentRepository) MarkRefunded(ctx context.Context, bookingID int64) error {
	res, err := r.db.Exec(ctx, `UPDATE payments SET refunded = true WHERE booking_id=$1`, bookingID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment for booking %d", domain.ErrNotFound, bookingID)
	}
	return nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
