package email

import (
	"context"

	"github.com/nkotelnikov/flightbooking/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender delivers booking notifications. The transport is stubbed to a
// log line; a real SMTP integration plugs in behind the same method.
type Sender struct {
	log *logrus.Logger
}

func NewSender(log *logrus.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.log.WithFields(logrus.Fields{
		"to":      event.Email,
		"event":   event.Type,
		"booking": event.Reference,
		"flight":  event.FlightID,
		"seats":   event.Seats,
	}).Info("sending booking email")
	return nil
}
