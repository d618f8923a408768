package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types carried on the notifications topic.
const (
	EventBookingCreated     = "booking_created"
	EventBookingUpdated     = "booking_updated"
	EventBookingCancelled   = "booking_cancelled"
	EventBookingReactivated = "booking_reactivated"
	EventBookingDeleted     = "booking_deleted"
	EventBookingRefunded    = "booking_refunded"
	EventPassengerAdded     = "passenger_added"
	EventPassengerRemoved   = "passenger_removed"
)

// PassengerDetail is the slice of passenger and flight data the notification
// worker needs to render a ticket line.
type PassengerDetail struct {
	GivenName     string    `json:"given_name"`
	FamilyName    string    `json:"family_name"`
	SeatClass     string    `json:"seat_class"`
	SeatNumber    int       `json:"seat_number"`
	OriginCode    string    `json:"origin_code"`
	OriginCity    string    `json:"origin_city"`
	DestCode      string    `json:"dest_code"`
	DestCity      string    `json:"dest_city"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

type BookingEvent struct {
	Type             string            `json:"type"`
	BookingID        int64             `json:"booking_id"`
	ConfirmationCode string            `json:"confirmation_code"`
	ContactEmail     string            `json:"contact_email"`
	TotalPrice       float64           `json:"total_price"`
	Passengers       []PassengerDetail `json:"passengers,omitempty"`
	OccurredAt       time.Time         `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
