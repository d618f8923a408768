package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meridianair/booking/internal/domain"
)

// DB is the subset of pgxpool.Pool the repositories use. Kept small so tests
// can substitute a pgxmock pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// querier is satisfied by both DB and pgx.Tx, so the seat-counter statements
// can run standalone or inside a larger transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	IdentifyFlight(ctx context.Context, originCode, destCode, airplaneModel string, departure, arrival time.Time) (*domain.Flight, error)
	ReserveSeat(ctx context.Context, flightID int64, class domain.CabinClass) error
	ReleaseSeat(ctx context.Context, flightID int64, class domain.CabinClass) error
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) *PGFlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, origin_code, origin_city, dest_code, dest_city, airplane_model, departure_time, arrival_time, is_active, first_max, business_max, economy_max, first_reserved, business_reserved, economy_reserved, first_price, business_price, economy_price, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.OriginCode, &f.OriginCity, &f.DestCode, &f.DestCity, &f.AirplaneModel,
		&f.DepartureTime, &f.ArrivalTime, &f.Active,
		&f.MaxFirst, &f.MaxBusiness, &f.MaxEconomy,
		&f.ReservedFirst, &f.ReservedBusiness, &f.ReservedEconomy,
		&f.PriceFirst, &f.PriceBusiness, &f.PriceEconomy,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	return scanFlight(row)
}

// IdentifyFlight resolves a flight by its exact route, airplane model and
// times. All five fields must match.
func (r *PGFlightRepository) IdentifyFlight(ctx context.Context, originCode, destCode, airplaneModel string, departure, arrival time.Time) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE origin_code=$1 AND dest_code=$2 AND airplane_model=$3 AND departure_time=$4 AND arrival_time=$5`,
		originCode, destCode, airplaneModel, departure, arrival)
	return scanFlight(row)
}

func (r *PGFlightRepository) ReserveSeat(ctx context.Context, flightID int64, class domain.CabinClass) error {
	return reserveSeat(ctx, r.db, flightID, class)
}

func (r *PGFlightRepository) ReleaseSeat(ctx context.Context, flightID int64, class domain.CabinClass) error {
	return releaseSeat(ctx, r.db, flightID, class)
}

// seatColumns maps a cabin class to its reserved/max column pair. The class
// set is closed, so the interpolated names never come from user input.
func seatColumns(class domain.CabinClass) (reserved, max string) {
	switch class {
	case domain.CabinFirst:
		return "first_reserved", "first_max"
	case domain.CabinBusiness:
		return "business_reserved", "business_max"
	default:
		return "economy_reserved", "economy_max"
	}
}

// reserveSeat claims one seat with a conditional update so two concurrent
// claims on the last seat cannot both succeed. A zero affected-row count is
// classified by re-reading the counters: full class, overbooked row, or a
// missing flight.
func reserveSeat(ctx context.Context, q querier, flightID int64, class domain.CabinClass) error {
	reservedCol, maxCol := seatColumns(class)
	res, err := q.Exec(ctx,
		fmt.Sprintf(`UPDATE flights SET %[1]s = %[1]s + 1, updated_at = now() WHERE id=$1 AND %[1]s < %[2]s`, reservedCol, maxCol),
		flightID)
	if err != nil {
		return err
	}
	if res.RowsAffected() > 0 {
		return nil
	}
	return classifyReserveFailure(ctx, q, flightID, class)
}

func classifyReserveFailure(ctx context.Context, q querier, flightID int64, class domain.CabinClass) error {
	reservedCol, maxCol := seatColumns(class)
	var reserved, max int
	err := q.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s, %s FROM flights WHERE id=$1`, reservedCol, maxCol),
		flightID).Scan(&reserved, &max)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: flight %d", domain.ErrNotFound, flightID)
	}
	if err != nil {
		return err
	}
	if reserved > max {
		return fmt.Errorf("%w: %s on flight %d (reserved=%d max=%d)", domain.ErrOverbooked, class, flightID, reserved, max)
	}
	return fmt.Errorf("%w: %s on flight %d", domain.ErrCapacityExceeded, class, flightID)
}

// releaseSeat returns one seat, guarded so the counter never goes below
// zero. A zero affected-row count on an existing flight means the caller
// released more than was reserved.
func releaseSeat(ctx context.Context, q querier, flightID int64, class domain.CabinClass) error {
	reservedCol, _ := seatColumns(class)
	res, err := q.Exec(ctx,
		fmt.Sprintf(`UPDATE flights SET %[1]s = %[1]s - 1, updated_at = now() WHERE id=$1 AND %[1]s > 0`, reservedCol),
		flightID)
	if err != nil {
		return err
	}
	if res.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id=$1)`, flightID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: flight %d", domain.ErrNotFound, flightID)
	}
	return fmt.Errorf("%w: %s on flight %d", domain.ErrInvalidState, class, flightID)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
