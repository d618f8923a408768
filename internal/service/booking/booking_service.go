package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meridianair/booking/internal/domain"
	"github.com/meridianair/booking/internal/kafka"
	"github.com/meridianair/booking/internal/repository"
	"github.com/meridianair/booking/internal/service/fare"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	GetByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, input UpdateBookingInput) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error

	CreatePassenger(ctx context.Context, input CreatePassengerInput) (*domain.Passenger, error)
	UpdatePassenger(ctx context.Context, input UpdatePassengerInput) (*domain.Passenger, error)
	DeletePassenger(ctx context.Context, id int64) error
}

// DiscountResolver maps a date of birth to a discount row.
type DiscountResolver interface {
	Resolve(ctx context.Context, dateOfBirth, now time.Time) (*domain.Discount, error)
	Lookup(ctx context.Context, discountType string) (*domain.Discount, error)
}

// Cache guards the window between reading a flight's counters and the
// conditional update that claims the seat. Optional; a nil cache skips it.
type Cache interface {
	AcquireClassLock(ctx context.Context, flightID int64, class domain.CabinClass, ttl time.Duration) (bool, error)
	ReleaseClassLock(ctx context.Context, flightID int64, class domain.CabinClass) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	passengers         repository.PassengerRepository
	flights            repository.FlightRepository
	discounts          DiscountResolver
	cache              Cache
	producer           Producer
	notificationsTopic string
	seatLockTTL        time.Duration
	logger             *logrus.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithSeatLockTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.seatLockTTL = ttl
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	passengers repository.PassengerRepository,
	flights repository.FlightRepository,
	discounts DiscountResolver,
	cache Cache,
	producer Producer,
	logger *logrus.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:    bookings,
		passengers:  passengers,
		flights:     flights,
		discounts:   discounts,
		cache:       cache,
		producer:    producer,
		seatLockTTL: 30 * time.Second,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type CreatePassengerInput struct {
	ConfirmationCode string    `json:"confirmation_code"`
	OriginCode       string    `json:"origin_code"`
	DestCode         string    `json:"dest_code"`
	AirplaneModel    string    `json:"airplane_model"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	GivenName        string    `json:"given_name"`
	FamilyName       string    `json:"family_name"`
	DateOfBirth      time.Time `json:"date_of_birth"`
	Gender           string    `json:"gender"`
	Address          string    `json:"address"`
	SeatClass        string    `json:"seat_class"`
	SeatNumber       int       `json:"seat_number"`
	CheckInGroup     int       `json:"check_in_group"`
}

type CreateBookingInput struct {
	ConfirmationCode string               `json:"confirmation_code"`
	LayoverCount     int                  `json:"layover_count"`
	ContactEmail     string               `json:"contact_email"`
	Passenger        CreatePassengerInput `json:"passenger"`
}

type UpdateBookingInput struct {
	ID               int64   `json:"id"`
	ConfirmationCode string  `json:"confirmation_code"`
	Active           bool    `json:"active"`
	LayoverCount     int     `json:"layover_count"`
	TotalPrice       float64 `json:"total_price"`
}

type UpdatePassengerInput struct {
	ID           int64  `json:"id"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	Gender       string `json:"gender"`
	Address      string `json:"address"`
	SeatClass    string `json:"seat_class"`
	SeatNumber   int    `json:"seat_number"`
	CheckInGroup int    `json:"check_in_group"`
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) GetByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	return s.bookings.GetByConfirmationCode(ctx, code)
}

// CreateBooking opens an empty active booking and attaches its first
// passenger, which reserves the seat and prices the fare.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.LayoverCount < 0 {
		return nil, fmt.Errorf("%w: layover count must not be negative", domain.ErrInvalidArgument)
	}

	code := input.ConfirmationCode
	if code == "" {
		code = uuid.NewString()
	}

	b := &domain.Booking{
		ConfirmationCode: code,
		Active:           true,
		LayoverCount:     input.LayoverCount,
		TotalPrice:       0,
		ContactEmail:     input.ContactEmail,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	input.Passenger.ConfirmationCode = code
	if _, err := s.CreatePassenger(ctx, input.Passenger); err != nil {
		// The empty booking is removed so a capacity rejection does not
		// strand a zero-passenger booking.
		if delErr := s.bookings.Delete(ctx, b.ID, nil); delErr != nil {
			s.logger.WithError(delErr).WithField("booking_id", b.ID).Warn("failed to remove empty booking after passenger rejection")
		}
		return nil, err
	}

	created, err := s.bookings.GetByConfirmationCode(ctx, code)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, s.bookingEvent(kafka.EventBookingCreated, created))
	return created, nil
}

// CreatePassenger attaches a passenger to an existing booking. The flight
// must match origin, destination, airplane model and both times exactly.
// Nothing is held if any step fails: the seat claim, the passenger row and
// the booking total move together in one unit of work.
func (s *BookingService) CreatePassenger(ctx context.Context, input CreatePassengerInput) (*domain.Passenger, error) {
	class, err := domain.ParseCabinClass(input.SeatClass)
	if err != nil {
		return nil, err
	}

	flight, err := s.flights.IdentifyFlight(ctx, input.OriginCode, input.DestCode, input.AirplaneModel, input.DepartureTime, input.ArrivalTime)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByConfirmationCode(ctx, input.ConfirmationCode)
	if err != nil {
		return nil, err
	}
	// An inactive booking holds no seats, so a passenger added to one would
	// claim a seat that nothing ever releases.
	if !booking.Active {
		return nil, fmt.Errorf("%w: cannot add passenger to inactive booking %d", domain.ErrInvalidState, booking.ID)
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireClassLock(ctx, flight.ID, class, s.seatLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s on flight %d is being booked", domain.ErrCapacityExceeded, class, flight.ID)
		}
		defer func() {
			if err := s.cache.ReleaseClassLock(ctx, flight.ID, class); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{"flight_id": flight.ID, "class": class}).Warn("failed to release seat lock")
			}
		}()
	}

	// Validate against the loaded counters first to classify full and
	// overbooked classes without a write. The conditional update inside
	// Create is the authoritative check under concurrency.
	if err := flight.ReserveSeat(class); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d, err := s.discounts.Resolve(ctx, input.DateOfBirth, now)
	if err != nil {
		return nil, err
	}
	price := fare.Quote(flight.BasePrice(class), d.Rate, booking.LayoverCount)

	p := &domain.Passenger{
		BookingID:    booking.ID,
		FlightID:     flight.ID,
		DiscountType: d.Type,
		GivenName:    input.GivenName,
		FamilyName:   input.FamilyName,
		DateOfBirth:  input.DateOfBirth,
		Gender:       input.Gender,
		Address:      input.Address,
		SeatClass:    class,
		SeatNumber:   input.SeatNumber,
		CheckInGroup: input.CheckInGroup,
	}
	if err := s.passengers.Create(ctx, p, price); err != nil {
		return nil, err
	}

	event := s.bookingEvent(kafka.EventPassengerAdded, booking)
	event.TotalPrice = booking.TotalPrice + price
	event.Passengers = []kafka.PassengerDetail{passengerDetail(p, flight)}
	s.publish(ctx, event)

	return p, nil
}

// UpdateBooking persists caller-supplied fields and reconciles seat
// reservations with the active flag. The field values are trusted as given;
// the total is not recomputed from passengers here.
func (s *BookingService) UpdateBooking(ctx context.Context, input UpdateBookingInput) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	var reserve, release []repository.SeatAdjustment
	reactivating := !b.Active && input.Active
	deactivating := b.Active && !input.Active
	switch {
	case deactivating:
		release = seatAdjustments(b.Passengers)
	case reactivating:
		// Re-claiming may fail if the seats were taken in the interim; the
		// transaction rolls back and the booking stays inactive.
		reserve = seatAdjustments(b.Passengers)
	}

	b.ConfirmationCode = input.ConfirmationCode
	b.Active = input.Active
	b.LayoverCount = input.LayoverCount
	b.TotalPrice = input.TotalPrice
	if err := s.bookings.Update(ctx, b, reserve, release); err != nil {
		return nil, err
	}

	switch {
	case deactivating:
		s.publish(ctx, s.bookingEvent(kafka.EventBookingCancelled, b))
	case reactivating:
		s.publish(ctx, s.bookingEvent(kafka.EventBookingReactivated, b))
	default:
		s.publish(ctx, s.bookingEvent(kafka.EventBookingUpdated, b))
	}
	return b, nil
}

// DeleteBooking releases every passenger's seat and removes the booking. An
// inactive booking holds no seats, so only active ones release. Any release
// failure aborts the whole delete; a partially decremented flight is worse
// than a lingering booking.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var release []repository.SeatAdjustment
	if b.Active {
		release = seatAdjustments(b.Passengers)
	}
	if err := s.bookings.Delete(ctx, id, release); err != nil {
		return err
	}

	s.publish(ctx, s.bookingEvent(kafka.EventBookingDeleted, b))
	return nil
}

// UpdatePassenger changes passenger fields. A seat-class change transfers
// the reservation, claiming the new class before releasing the old, and
// moves the booking total by the fare difference.
func (s *BookingService) UpdatePassenger(ctx context.Context, input UpdatePassengerInput) (*domain.Passenger, error) {
	class, err := domain.ParseCabinClass(input.SeatClass)
	if err != nil {
		return nil, err
	}

	p, err := s.passengers.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	oldClass := p.SeatClass

	p.GivenName = input.GivenName
	p.FamilyName = input.FamilyName
	p.Gender = input.Gender
	p.Address = input.Address
	p.SeatNumber = input.SeatNumber
	p.CheckInGroup = input.CheckInGroup

	if class == oldClass {
		if err := s.passengers.Update(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	booking, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Active {
		return nil, fmt.Errorf("%w: cannot change seat class on inactive booking %d", domain.ErrInvalidState, booking.ID)
	}

	flight, err := s.flights.GetByID(ctx, p.FlightID)
	if err != nil {
		return nil, err
	}
	d, err := s.discounts.Lookup(ctx, p.DiscountType)
	if err != nil {
		return nil, err
	}

	oldFare := fare.Quote(flight.BasePrice(oldClass), d.Rate, booking.LayoverCount)
	newFare := fare.Quote(flight.BasePrice(class), d.Rate, booking.LayoverCount)

	// TransferSeatClass persists the field changes in the same transaction
	// as the seat move, so a rejected transfer commits nothing.
	p.SeatClass = class
	if err := s.passengers.TransferSeatClass(ctx, p, oldClass, newFare-oldFare); err != nil {
		// The old reservation is untouched on failure.
		p.SeatClass = oldClass
		return nil, err
	}
	return p, nil
}

// DeletePassenger releases the seat, subtracts the fare from the booking
// total and removes the passenger, all in one unit of work.
func (s *BookingService) DeletePassenger(ctx context.Context, id int64) error {
	p, err := s.passengers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	booking, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return err
	}
	flight, err := s.flights.GetByID(ctx, p.FlightID)
	if err != nil {
		return err
	}
	d, err := s.discounts.Lookup(ctx, p.DiscountType)
	if err != nil {
		return err
	}
	price := fare.Quote(flight.BasePrice(p.SeatClass), d.Rate, booking.LayoverCount)

	// An inactive booking holds no seat for this passenger; only the row and
	// the total change.
	if err := s.passengers.Delete(ctx, p, price, booking.Active); err != nil {
		return err
	}

	event := s.bookingEvent(kafka.EventPassengerRemoved, booking)
	event.Passengers = []kafka.PassengerDetail{passengerDetail(p, flight)}
	s.publish(ctx, event)
	return nil
}

func seatAdjustments(passengers []domain.Passenger) []repository.SeatAdjustment {
	adjustments := make([]repository.SeatAdjustment, 0, len(passengers))
	for _, p := range passengers {
		adjustments = append(adjustments, repository.SeatAdjustment{FlightID: p.FlightID, Class: p.SeatClass})
	}
	return adjustments
}

func passengerDetail(p *domain.Passenger, f *domain.Flight) kafka.PassengerDetail {
	return kafka.PassengerDetail{
		GivenName:     p.GivenName,
		FamilyName:    p.FamilyName,
		SeatClass:     p.SeatClass.String(),
		SeatNumber:    p.SeatNumber,
		OriginCode:    f.OriginCode,
		OriginCity:    f.OriginCity,
		DestCode:      f.DestCode,
		DestCity:      f.DestCity,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
	}
}

func (s *BookingService) bookingEvent(eventType string, b *domain.Booking) kafka.BookingEvent {
	return kafka.BookingEvent{
		Type:             eventType,
		BookingID:        b.ID,
		ConfirmationCode: b.ConfirmationCode,
		ContactEmail:     b.ContactEmail,
		TotalPrice:       b.TotalPrice,
		OccurredAt:       time.Now().UTC(),
	}
}

// publish is fire-and-forget: notification failures are logged, never
// propagated to the booking flow.
func (s *BookingService) publish(ctx context.Context, event kafka.BookingEvent) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, event.ConfirmationCode, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_type":        event.Type,
			"confirmation_code": event.ConfirmationCode,
		}).Warn("failed to publish booking event")
	}
}

var _ BookingUseCase = (*BookingService)(nil)
