package flights

import (
	"context"
	"errors"

	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, criteria repository.FlightSearch) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
}

// Cache keeps the full flight list hot. Seat mutations elsewhere
// invalidate it through the same interface.
type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache Cache
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) Search(ctx context.Context, criteria repository.FlightSearch) ([]domain.Flight, error) {
	return s.repo.Search(ctx, criteria)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// Create persists a new flight. A new flight starts with every seat
// available unless the caller says otherwise.
func (s *FlightService) Create(ctx context.Context, flight *domain.Flight) error {
	if flight.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	if flight.AvailableSeats == 0 {
		flight.AvailableSeats = flight.Capacity
	}
	if flight.AvailableSeats < 0 || flight.AvailableSeats > flight.Capacity {
		return errors.New("available seats must be between 0 and capacity")
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Update changes flight attributes. The availability counter is not
// writable here, only the inventory service moves it.
func (s *FlightService) Update(ctx context.Context, flight *domain.Flight) error {
	if flight.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	if err := s.repo.Update(ctx, flight); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
