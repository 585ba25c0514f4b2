package inventory

import (
	"context"
	"testing"

	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/repository"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFlightRepo struct {
	nextID  int64
	flights map[int64]domain.Flight
}

func newMemFlightRepo() *memFlightRepo {
	return &memFlightRepo{nextID: 1, flights: make(map[int64]domain.Flight)}
}

func (r *memFlightRepo) add(f domain.Flight) domain.Flight {
	f.ID = r.nextID
	r.nextID++
	r.flights[f.ID] = f
	return f
}

func (r *memFlightRepo) List(ctx context.Context) ([]domain.Flight, error) { return nil, nil }

func (r *memFlightRepo) Search(ctx context.Context, criteria repository.FlightSearch) ([]domain.Flight, error) {
	return nil, nil
}

func (r *memFlightRepo) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, ok := r.flights[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (r *memFlightRepo) Create(ctx context.Context, flight *domain.Flight) error {
	*flight = r.add(*flight)
	return nil
}

func (r *memFlightRepo) Update(ctx context.Context, flight *domain.Flight) error { return nil }

func (r *memFlightRepo) Delete(ctx context.Context, id int64) error { return nil }

func (r *memFlightRepo) ReserveSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error) {
	f, ok := r.flights[flightID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if f.AvailableSeats < count {
		return nil, domain.ErrInsufficientCapacity
	}
	f.AvailableSeats -= count
	r.flights[flightID] = f
	return &f, nil
}

func (r *memFlightRepo) ReleaseSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, bool, error) {
	f, ok := r.flights[flightID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	clamped := f.AvailableSeats+count > f.Capacity
	f.AvailableSeats += count
	if f.AvailableSeats > f.Capacity {
		f.AvailableSeats = f.Capacity
	}
	r.flights[flightID] = f
	return &f, clamped, nil
}

var _ repository.FlightRepository = (*memFlightRepo)(nil)

func TestReserveSeats_DecrementsAvailability(t *testing.T) {
	repo := newMemFlightRepo()
	flight := repo.add(domain.Flight{Capacity: 10, AvailableSeats: 10})

	log, _ := logrustest.NewNullLogger()
	service := NewInventoryService(repo, log)

	updated, err := service.ReserveSeats(context.Background(), flight.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.AvailableSeats)
}

func TestReserveSeats_InsufficientCapacity(t *testing.T) {
	repo := newMemFlightRepo()
	flight := repo.add(domain.Flight{Capacity: 10, AvailableSeats: 2})

	log, _ := logrustest.NewNullLogger()
	service := NewInventoryService(repo, log)

	_, err := service.ReserveSeats(context.Background(), flight.ID, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientCapacity)

	stored, err := repo.GetByID(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.AvailableSeats)
}

func TestReleaseSeats_ReturnsSeats(t *testing.T) {
	repo := newMemFlightRepo()
	flight := repo.add(domain.Flight{Capacity: 10, AvailableSeats: 4})

	log, hook := logrustest.NewNullLogger()
	service := NewInventoryService(repo, log)

	updated, err := service.ReleaseSeats(context.Background(), flight.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.AvailableSeats)
	assert.Empty(t, hook.Entries)
}

func TestReleaseSeats_ClampsAtCapacityAndWarns(t *testing.T) {
	repo := newMemFlightRepo()
	flight := repo.add(domain.Flight{Capacity: 10, AvailableSeats: 9})

	log, hook := logrustest.NewNullLogger()
	service := NewInventoryService(repo, log)

	updated, err := service.ReleaseSeats(context.Background(), flight.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.AvailableSeats)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, flight.ID, entry.Data["flight_id"])
	assert.Equal(t, 5, entry.Data["released"])
}

func TestReserveSeats_FlightNotFound(t *testing.T) {
	log, _ := logrustest.NewNullLogger()
	service := NewInventoryService(newMemFlightRepo(), log)

	_, err := service.ReserveSeats(context.Background(), 404, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
