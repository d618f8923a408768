package email

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/meridianair/booking/internal/kafka"
	"github.com/sirupsen/logrus"
)

type Sender struct {
	logger *logrus.Logger
}

func NewSender(logger *logrus.Logger) *Sender {
	return &Sender{logger: logger}
}

// Send renders and delivers the booking-details message for an event. The
// transport is a log line here; the rendering is the part the worker owns.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.ContactEmail == "" {
		s.logger.WithField("confirmation_code", event.ConfirmationCode).Warn("booking has no contact email, skipping notification")
		return nil
	}

	body := RenderBookingDetails(event)
	s.logger.WithFields(logrus.Fields{
		"to":                event.ContactEmail,
		"event_type":        event.Type,
		"confirmation_code": event.ConfirmationCode,
	}).Info("sending booking details")
	fmt.Println(body)
	return nil
}

// RenderBookingDetails formats the confirmation code and one ticket line per
// passenger, earliest departure first.
func RenderBookingDetails(event kafka.BookingEvent) string {
	passengers := make([]kafka.PassengerDetail, len(event.Passengers))
	copy(passengers, event.Passengers)
	sort.Slice(passengers, func(i, j int) bool {
		return passengers[i].DepartureTime.Before(passengers[j].DepartureTime)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Your confirmation code: %s\n\n", event.ConfirmationCode)
	for _, p := range passengers {
		fmt.Fprintf(&b, "Seat %d (%s): %s %s\n", p.SeatNumber, p.SeatClass, p.GivenName, p.FamilyName)
		fmt.Fprintf(&b, "Departing from: %s [%s] (%s)\n", p.OriginCity, p.OriginCode, p.DepartureTime.Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "Arriving at: %s [%s] (%s)\n", p.DestCity, p.DestCode, p.ArrivalTime.Format("2006-01-02 15:04"))
		b.WriteString("--------------------------------------------------------------------\n")
	}
	return b.String()
}
