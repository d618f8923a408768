package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meridianair/booking/internal/domain"
)

type PassengerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	// Create inserts the passenger, claims its seat and adds the fare to the
	// booking total as one transaction. A crash can never leave a seat
	// reserved without its fare recorded, or the other way round.
	Create(ctx context.Context, p *domain.Passenger, fare float64) error
	Update(ctx context.Context, p *domain.Passenger) error
	// TransferSeatClass moves the passenger's reservation to the class held
	// in p.SeatClass and persists the passenger's other mutable fields in the
	// same transaction. The new seat is claimed before the old one is
	// released so no seat ever looks free while none has been given up.
	TransferSeatClass(ctx context.Context, p *domain.Passenger, oldClass domain.CabinClass, fareDelta float64) error
	// Delete removes the passenger and subtracts its fare from the booking
	// total. releaseSeat is false when the booking is inactive and therefore
	// holds no seat to give back.
	Delete(ctx context.Context, p *domain.Passenger, fare float64, releaseSeat bool) error
}

type PGPassengerRepository struct {
	db DB
}

func NewPassengerRepository(db DB) *PGPassengerRepository {
	return &PGPassengerRepository{db: db}
}

const passengerColumns = `id, booking_id, flight_id, discount_type, given_name, family_name, dob, gender, address, seat_class, seat_number, check_in_group`

func scanPassenger(row pgx.Row) (*domain.Passenger, error) {
	var p domain.Passenger
	var seatClass string
	err := row.Scan(&p.ID, &p.BookingID, &p.FlightID, &p.DiscountType, &p.GivenName, &p.FamilyName,
		&p.DateOfBirth, &p.Gender, &p.Address, &seatClass, &p.SeatNumber, &p.CheckInGroup)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if p.SeatClass, err = domain.ParseCabinClass(seatClass); err != nil {
		return nil, err
	}
	return &p, nil
}

func passengersByBooking(ctx context.Context, db DB, bookingID int64) ([]domain.Passenger, error) {
	rows, err := db.Query(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, *p)
	}
	return passengers, rows.Err()
}

func (r *PGPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	p, err := scanPassenger(r.db.QueryRow(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE id=$1`, id))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: passenger %d", domain.ErrNotFound, id)
	}
	return p, err
}

func (r *PGPassengerRepository) Create(ctx context.Context, p *domain.Passenger, fare float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := reserveSeat(ctx, tx, p.FlightID, p.SeatClass); err != nil {
		return err
	}

	if err := tx.QueryRow(ctx, `INSERT INTO passengers (booking_id, flight_id, discount_type, given_name, family_name, dob, gender, address, seat_class, seat_number, check_in_group)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		p.BookingID, p.FlightID, p.DiscountType, p.GivenName, p.FamilyName, p.DateOfBirth,
		p.Gender, p.Address, p.SeatClass.String(), p.SeatNumber, p.CheckInGroup).Scan(&p.ID); err != nil {
		return err
	}

	if err := addToBookingTotal(ctx, tx, p.BookingID, fare); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGPassengerRepository) Update(ctx context.Context, p *domain.Passenger) error {
	res, err := r.db.Exec(ctx, `UPDATE passengers SET discount_type=$1, given_name=$2, family_name=$3, dob=$4, gender=$5, address=$6, seat_number=$7, check_in_group=$8 WHERE id=$9`,
		p.DiscountType, p.GivenName, p.FamilyName, p.DateOfBirth, p.Gender, p.Address, p.SeatNumber, p.CheckInGroup, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: passenger %d", domain.ErrNotFound, p.ID)
	}
	return nil
}

func (r *PGPassengerRepository) TransferSeatClass(ctx context.Context, p *domain.Passenger, oldClass domain.CabinClass, fareDelta float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Claim before release: a failure here aborts with the old reservation
	// untouched.
	if err := reserveSeat(ctx, tx, p.FlightID, p.SeatClass); err != nil {
		return err
	}
	if err := releaseSeat(ctx, tx, p.FlightID, oldClass); err != nil {
		return err
	}

	res, err := tx.Exec(ctx, `UPDATE passengers SET seat_class=$1, given_name=$2, family_name=$3, gender=$4, address=$5, seat_number=$6, check_in_group=$7 WHERE id=$8`,
		p.SeatClass.String(), p.GivenName, p.FamilyName, p.Gender, p.Address, p.SeatNumber, p.CheckInGroup, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: passenger %d", domain.ErrNotFound, p.ID)
	}

	if err := addToBookingTotal(ctx, tx, p.BookingID, fareDelta); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGPassengerRepository) Delete(ctx context.Context, p *domain.Passenger, fare float64, releaseSeatHeld bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if releaseSeatHeld {
		if err := releaseSeat(ctx, tx, p.FlightID, p.SeatClass); err != nil {
			return err
		}
	}

	res, err := tx.Exec(ctx, `DELETE FROM passengers WHERE id=$1`, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: passenger %d", domain.ErrNotFound, p.ID)
	}

	if err := addToBookingTotal(ctx, tx, p.BookingID, -fare); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func addToBookingTotal(ctx context.Context, q querier, bookingID int64, delta float64) error {
	res, err := q.Exec(ctx, `UPDATE bookings SET total_price = total_price + $1, updated_at = now() WHERE id=$2`, delta, bookingID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, bookingID)
	}
	return nil
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
