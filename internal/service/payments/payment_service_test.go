package payments

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/meridianair/booking/internal/domain"
	"github.com/meridianair/booking/internal/kafka"
	"github.com/meridianair/booking/internal/service/booking"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkRefunded(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) UpdateBooking(ctx context.Context, input booking.UpdateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) DeleteBooking(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingUseCase) CreatePassenger(ctx context.Context, input booking.CreatePassengerInput) (*domain.Passenger, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockBookingUseCase) UpdatePassenger(ctx context.Context, input booking.UpdatePassengerInput) (*domain.Passenger, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockBookingUseCase) DeletePassenger(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService() (*PaymentService, *MockPaymentRepository, *MockBookingUseCase, *MockProducer) {
	mockPayments := &MockPaymentRepository{}
	mockBookings := &MockBookingUseCase{}
	mockProducer := &MockProducer{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	service := NewPaymentService(mockPayments, mockBookings, mockProducer, logger,
		WithNotificationsTopic("notifications_topic"),
	)
	return service, mockPayments, mockBookings, mockProducer
}

func refundEvent(bookingID int64) interface{} {
	return mock.MatchedBy(func(v interface{}) bool {
		event, ok := v.(kafka.BookingEvent)
		return ok && event.Type == kafka.EventBookingRefunded && event.BookingID == bookingID
	})
}

func TestPaymentService_RefundBooking_DeactivatesActiveBooking(t *testing.T) {
	service, mockPayments, mockBookings, mockProducer := newTestService()

	ctx := context.Background()
	payment := &domain.Payment{StripeID: "ch_1", BookingID: 5, Refunded: false}
	b := &domain.Booking{ID: 5, ConfirmationCode: "code-5", Active: true, LayoverCount: 1, TotalPrice: 220}

	mockPayments.On("GetByBookingID", ctx, int64(5)).Return(payment, nil).Once()
	mockBookings.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()
	mockBookings.On("UpdateBooking", ctx, booking.UpdateBookingInput{
		ID:               5,
		ConfirmationCode: "code-5",
		Active:           false,
		LayoverCount:     1,
		TotalPrice:       220,
	}).Return(&domain.Booking{ID: 5, Active: false}, nil).Once()
	mockPayments.On("MarkRefunded", ctx, int64(5)).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications_topic", "code-5", refundEvent(5)).Return(nil).Once()

	err := service.RefundBooking(ctx, 5)

	assert.NoError(t, err)
	mockPayments.AssertExpectations(t)
	mockBookings.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestPaymentService_RefundBooking_InactiveBookingSkipsUpdate(t *testing.T) {
	service, mockPayments, mockBookings, mockProducer := newTestService()

	ctx := context.Background()
	payment := &domain.Payment{StripeID: "ch_1", BookingID: 5, Refunded: false}
	b := &domain.Booking{ID: 5, ConfirmationCode: "code-5", Active: false}

	mockPayments.On("GetByBookingID", ctx, int64(5)).Return(payment, nil).Once()
	mockBookings.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()
	mockPayments.On("MarkRefunded", ctx, int64(5)).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications_topic", "code-5", refundEvent(5)).Return(nil).Once()

	err := service.RefundBooking(ctx, 5)

	assert.NoError(t, err)
	mockBookings.AssertNotCalled(t, "UpdateBooking")
	mockProducer.AssertExpectations(t)
}

func TestPaymentService_RefundBooking_AlreadyRefunded(t *testing.T) {
	service, mockPayments, mockBookings, mockProducer := newTestService()

	ctx := context.Background()
	payment := &domain.Payment{StripeID: "ch_1", BookingID: 5, Refunded: true}

	mockPayments.On("GetByBookingID", ctx, int64(5)).Return(payment, nil).Once()

	err := service.RefundBooking(ctx, 5)

	assert.NoError(t, err)
	mockBookings.AssertNotCalled(t, "GetBooking")
	mockPayments.AssertNotCalled(t, "MarkRefunded")
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestPaymentService_RefundBooking_NoPayment(t *testing.T) {
	service, mockPayments, mockBookings, _ := newTestService()

	ctx := context.Background()
	mockPayments.On("GetByBookingID", ctx, int64(99)).Return(nil, domain.ErrNotFound).Once()

	err := service.RefundBooking(ctx, 99)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockBookings.AssertNotCalled(t, "GetBooking")
}

func TestPaymentService_RefundBooking_DeactivationFailureKeepsPayment(t *testing.T) {
	service, mockPayments, mockBookings, mockProducer := newTestService()

	ctx := context.Background()
	payment := &domain.Payment{StripeID: "ch_1", BookingID: 5, Refunded: false}
	b := &domain.Booking{ID: 5, ConfirmationCode: "code-5", Active: true}

	mockPayments.On("GetByBookingID", ctx, int64(5)).Return(payment, nil).Once()
	mockBookings.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()
	mockBookings.On("UpdateBooking", ctx, mock.Anything).Return(nil, domain.ErrInvalidState).Once()

	err := service.RefundBooking(ctx, 5)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	mockPayments.AssertNotCalled(t, "MarkRefunded")
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestPaymentService_RefundBooking_PublishFailureNotFatal(t *testing.T) {
	service, mockPayments, mockBookings, mockProducer := newTestService()

	ctx := context.Background()
	payment := &domain.Payment{StripeID: "ch_1", BookingID: 5, Refunded: false}
	b := &domain.Booking{ID: 5, ConfirmationCode: "code-5", Active: false}

	mockPayments.On("GetByBookingID", ctx, int64(5)).Return(payment, nil).Once()
	mockBookings.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()
	mockPayments.On("MarkRefunded", ctx, int64(5)).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications_topic", "code-5", mock.Anything).
		Return(errors.New("broker unreachable")).Once()

	err := service.RefundBooking(ctx, 5)

	assert.NoError(t, err)
}

func TestPaymentService_CreatePayment(t *testing.T) {
	service, mockPayments, _, _ := newTestService()

	ctx := context.Background()
	p := &domain.Payment{StripeID: "ch_2", BookingID: 6}
	mockPayments.On("Create", ctx, p).Return(nil).Once()

	created, err := service.CreatePayment(ctx, p)

	assert.NoError(t, err)
	assert.Equal(t, p, created)
}
