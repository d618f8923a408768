package domain

import "time"

// Booking groups passengers under one confirmation code. TotalPrice is kept
// equal to the sum of the attached passengers' fares by incremental updates
// at every passenger change, never by a continuous re-validation.
type Booking struct {
	ID               int64
	ConfirmationCode string
	Active           bool
	LayoverCount     int
	TotalPrice       float64
	ContactEmail     string
	Passengers       []Passenger
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Passenger is attached to exactly one booking and one flight. Its cabin
// class holds exactly one reserved seat while the booking is active.
type Passenger struct {
	ID           int64
	BookingID    int64
	FlightID     int64
	DiscountType string
	GivenName    string
	FamilyName   string
	DateOfBirth  time.Time
	Gender       string
	Address      string
	SeatClass    CabinClass
	SeatNumber   int
	CheckInGroup int
}

// Discount rates are multipliers applied to the base price, not percentage
// reductions: "none" stores 1.0, a rate of 0 would make the seat free.
type Discount struct {
	Type string
	Rate float64
}

const (
	DiscountNone    = "none"
	DiscountChild   = "child"
	DiscountElderly = "elderly"
)

// Payment is one-to-one with a booking. Reservation state is tied to
// Booking.Active only; refund and deactivation are triggered independently.
type Payment struct {
	StripeID  string
	BookingID int64
	Refunded  bool
	CreatedAt time.Time
}
