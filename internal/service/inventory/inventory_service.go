// Package inventory owns the per-flight seat counters. All mutation of
// available_seats goes through this service so the conditional-update
// contract is applied in exactly one place.
package inventory

import (
	"context"

	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

type InventoryUseCase interface {
	ReserveSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error)
	ReleaseSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error)
}

type InventoryService struct {
	flights repository.FlightRepository
	log     *logrus.Logger
}

func NewInventoryService(flights repository.FlightRepository, log *logrus.Logger) *InventoryService {
	return &InventoryService{flights: flights, log: log}
}

// ReserveSeats decrements the flight's available seats by count. The
// decrement is a single conditional statement at the storage layer, so
// two concurrent reservations can never jointly overdraw a flight.
func (s *InventoryService) ReserveSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error) {
	return s.flights.ReserveSeats(ctx, flightID, count)
}

// ReleaseSeats returns count seats to the flight, clamped at capacity.
// Hitting the clamp means something released seats it never reserved,
// so it is logged as a consistency warning rather than ignored.
func (s *InventoryService) ReleaseSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error) {
	flight, clamped, err := s.flights.ReleaseSeats(ctx, flightID, count)
	if err != nil {
		return nil, err
	}
	if clamped && s.log != nil {
		s.log.WithFields(logrus.Fields{
			"flight_id": flightID,
			"released":  count,
			"capacity":  flight.Capacity,
		}).Warn("seat release clamped at capacity, seat accounting is off")
	}
	return flight, nil
}

var _ InventoryUseCase = (*InventoryService)(nil)
