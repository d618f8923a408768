package domain

import (
	"fmt"
	"time"
)

// CabinClass is a closed set. Values constructed through ParseCabinClass are
// always valid, which removes the "unknown seat class" failure path from
// everything downstream.
type CabinClass string

const (
	CabinFirst    CabinClass = "first"
	CabinBusiness CabinClass = "business"
	CabinEconomy  CabinClass = "economy"
)

func ParseCabinClass(s string) (CabinClass, error) {
	switch CabinClass(s) {
	case CabinFirst, CabinBusiness, CabinEconomy:
		return CabinClass(s), nil
	default:
		return "", fmt.Errorf("%w: unknown cabin class %q", ErrInvalidArgument, s)
	}
}

func (c CabinClass) String() string { return string(c) }

// Flight carries the route, the airplane it flies, and per-class seat
// counters. Max counts come from the airplane; reserved counts are mutable
// shared state owned by the flight row.
type Flight struct {
	ID            int64
	OriginCode    string
	OriginCity    string
	DestCode      string
	DestCity      string
	AirplaneModel string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Active        bool

	MaxFirst    int
	MaxBusiness int
	MaxEconomy  int

	ReservedFirst    int
	ReservedBusiness int
	ReservedEconomy  int

	PriceFirst    float64
	PriceBusiness float64
	PriceEconomy  float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f *Flight) MaxSeats(c CabinClass) int {
	switch c {
	case CabinFirst:
		return f.MaxFirst
	case CabinBusiness:
		return f.MaxBusiness
	default:
		return f.MaxEconomy
	}
}

func (f *Flight) ReservedSeats(c CabinClass) int {
	switch c {
	case CabinFirst:
		return f.ReservedFirst
	case CabinBusiness:
		return f.ReservedBusiness
	default:
		return f.ReservedEconomy
	}
}

func (f *Flight) BasePrice(c CabinClass) float64 {
	switch c {
	case CabinFirst:
		return f.PriceFirst
	case CabinBusiness:
		return f.PriceBusiness
	default:
		return f.PriceEconomy
	}
}

func (f *Flight) setReserved(c CabinClass, n int) {
	switch c {
	case CabinFirst:
		f.ReservedFirst = n
	case CabinBusiness:
		f.ReservedBusiness = n
	default:
		f.ReservedEconomy = n
	}
}

// ReserveSeat claims one seat in the class. A full class fails with
// ErrCapacityExceeded; reserved > max fails with ErrOverbooked so an already
// corrupted counter is never advanced further.
func (f *Flight) ReserveSeat(c CabinClass) error {
	available := f.MaxSeats(c) - f.ReservedSeats(c)
	switch {
	case available > 0:
		f.setReserved(c, f.ReservedSeats(c)+1)
		return nil
	case available == 0:
		return fmt.Errorf("%w: %s on flight %d", ErrCapacityExceeded, c, f.ID)
	default:
		return fmt.Errorf("%w: %s on flight %d (reserved=%d max=%d)",
			ErrOverbooked, c, f.ID, f.ReservedSeats(c), f.MaxSeats(c))
	}
}

// ReleaseSeat returns one seat to the class. Releasing at zero is a caller
// bug and fails with ErrInvalidState instead of clamping.
func (f *Flight) ReleaseSeat(c CabinClass) error {
	if f.ReservedSeats(c) <= 0 {
		return fmt.Errorf("%w: %s on flight %d", ErrInvalidState, c, f.ID)
	}
	f.setReserved(c, f.ReservedSeats(c)-1)
	return nil
}
