package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meridianair/booking/internal/domain"
)

// SeatAdjustment names one (flight, class) counter to move by one seat.
type SeatAdjustment struct {
	FlightID int64
	Class    domain.CabinClass
}

type BookingRepository interface {
	List(ctx context.Context) ([]domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error)
	Create(ctx context.Context, b *domain.Booking) error
	// Update persists the booking fields and applies the given seat
	// adjustments in the same transaction, aborting on the first failure.
	Update(ctx context.Context, b *domain.Booking, reserve, release []SeatAdjustment) error
	Delete(ctx context.Context, id int64, release []SeatAdjustment) error
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, confirmation_code, is_active, layover_count, total_price, contact_email, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.ConfirmationCode, &b.Active, &b.LayoverCount, &b.TotalPrice, &b.ContactEmail, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	if b.Passengers, err = passengersByBooking(ctx, r.db, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE confirmation_code=$1`, code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking with confirmation code %s", domain.ErrNotFound, code)
		}
		return nil, err
	}
	if b.Passengers, err = passengersByBooking(ctx, r.db, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.QueryRow(ctx, `INSERT INTO bookings (confirmation_code, is_active, layover_count, total_price, contact_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		b.ConfirmationCode, b.Active, b.LayoverCount, b.TotalPrice, b.ContactEmail).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PGBookingRepository) Update(ctx context.Context, b *domain.Booking, reserve, release []SeatAdjustment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := applyAdjustments(ctx, tx, reserve, release); err != nil {
		return err
	}

	res, err := tx.Exec(ctx, `UPDATE bookings SET confirmation_code=$1, is_active=$2, layover_count=$3, total_price=$4, updated_at=now() WHERE id=$5`,
		b.ConfirmationCode, b.Active, b.LayoverCount, b.TotalPrice, b.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, b.ID)
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) Delete(ctx context.Context, id int64, release []SeatAdjustment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := applyAdjustments(ctx, tx, nil, release); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM passengers WHERE booking_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}

	return tx.Commit(ctx)
}

// applyAdjustments runs seat increments before decrements and stops at the
// first failure, which rolls back the surrounding transaction and leaves
// every counter untouched.
func applyAdjustments(ctx context.Context, tx pgx.Tx, reserve, release []SeatAdjustment) error {
	for _, adj := range reserve {
		if err := reserveSeat(ctx, tx, adj.FlightID, adj.Class); err != nil {
			return err
		}
	}
	for _, adj := range release {
		if err := releaseSeat(ctx, tx, adj.FlightID, adj.Class); err != nil {
			return err
		}
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
