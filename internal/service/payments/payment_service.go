package payments

import (
	"context"
	"time"

	"github.com/meridianair/booking/internal/domain"
	"github.com/meridianair/booking/internal/kafka"
	"github.com/meridianair/booking/internal/repository"
	"github.com/meridianair/booking/internal/service/booking"
	"github.com/sirupsen/logrus"
)

type PaymentUseCase interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	RefundBooking(ctx context.Context, bookingID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// PaymentService records payments and drives refunds. The gateway charge
// itself happens outside this service; only the recorded state lives here.
type PaymentService struct {
	payments           repository.PaymentRepository
	bookings           booking.BookingUseCase
	producer           Producer
	notificationsTopic string
	logger             *logrus.Logger
}

type PaymentServiceOption func(*PaymentService)

func WithNotificationsTopic(topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.notificationsTopic = topic
	}
}

func NewPaymentService(
	payments repository.PaymentRepository,
	bookings booking.BookingUseCase,
	producer Producer,
	logger *logrus.Logger,
	opts ...PaymentServiceOption,
) *PaymentService {
	service := &PaymentService{
		payments: payments,
		bookings: bookings,
		producer: producer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *PaymentService) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	return s.payments.GetByBookingID(ctx, bookingID)
}

func (s *PaymentService) CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RefundBooking deactivates the booking, releasing its seats, then marks the
// payment refunded. An already refunded payment is a no-op. Reservation
// state follows Booking.Active only, never the payment row.
func (s *PaymentService) RefundBooking(ctx context.Context, bookingID int64) error {
	p, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	if p.Refunded {
		s.logger.WithField("booking_id", bookingID).Info("payment already refunded")
		return nil
	}

	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Active {
		if _, err := s.bookings.UpdateBooking(ctx, booking.UpdateBookingInput{
			ID:               b.ID,
			ConfirmationCode: b.ConfirmationCode,
			Active:           false,
			LayoverCount:     b.LayoverCount,
			TotalPrice:       b.TotalPrice,
		}); err != nil {
			return err
		}
	}

	if err := s.payments.MarkRefunded(ctx, bookingID); err != nil {
		return err
	}

	s.publish(ctx, kafka.BookingEvent{
		Type:             kafka.EventBookingRefunded,
		BookingID:        b.ID,
		ConfirmationCode: b.ConfirmationCode,
		ContactEmail:     b.ContactEmail,
		TotalPrice:       b.TotalPrice,
		OccurredAt:       time.Now().UTC(),
	})
	return nil
}

// publish is fire-and-forget: notification failures are logged, never
// propagated to the refund flow.
func (s *PaymentService) publish(ctx context.Context, event kafka.BookingEvent) {
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

var _ PaymentUseCase = (*PaymentService)(nil)
