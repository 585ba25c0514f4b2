package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nkotelnikov/flightbooking/internal/domain"
)

// FlightSearch narrows List results. Zero values mean "no filter".
type FlightSearch struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, criteria FlightSearch) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error

	// ReserveSeats decrements available_seats by count in a single
	// conditional statement. It never lets the counter go negative.
	ReserveSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error)

	// ReleaseSeats increments available_seats by count, clamped at
	// capacity. The returned bool reports whether the clamp engaged,
	// which indicates a prior accounting bug.
	ReleaseSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, bool, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, airline, origin, destination, departure_time, arrival_time, capacity, available_seats, price_cents, created_at, updated_at`

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.Capacity, &f.AvailableSeats, &f.PriceCents, &f.CreatedAt, &f.UpdatedAt)
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) Search(ctx context.Context, criteria FlightSearch) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE 1=1`
	args := make([]interface{}, 0, 4)
	if criteria.Origin != "" {
		args = append(args, "%"+criteria.Origin+"%")
		query += ` AND origin ILIKE $` + strconv.Itoa(len(args))
	}
	if criteria.Destination != "" {
		args = append(args, "%"+criteria.Destination+"%")
		query += ` AND destination ILIKE $` + strconv.Itoa(len(args))
	}
	if !criteria.DepartureDate.IsZero() {
		day := criteria.DepartureDate.Truncate(24 * time.Hour)
		args = append(args, day)
		query += ` AND departure_time >= $` + strconv.Itoa(len(args))
		args = append(args, day.Add(24*time.Hour))
		query += ` AND departure_time < $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY departure_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, airline, origin, destination, departure_time, arrival_time, capacity, available_seats, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		flight.FlightNumber, flight.Airline, flight.Origin, flight.Destination, flight.DepartureTime, flight.ArrivalTime, flight.Capacity, flight.AvailableSeats, flight.PriceCents).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	row := r.db.QueryRow(ctx, `UPDATE flights SET flight_number=$2, airline=$3, origin=$4, destination=$5, departure_time=$6, arrival_time=$7, capacity=$8, price_cents=$9, updated_at=now()
		WHERE id=$1 RETURNING available_seats, created_at, updated_at`,
		flight.ID, flight.FlightNumber, flight.Airline, flight.Origin, flight.Destination, flight.DepartureTime, flight.ArrivalTime, flight.Capacity, flight.PriceCents)
	if err := row.Scan(&flight.AvailableSeats, &flight.CreatedAt, &flight.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGFlightRepository) ReserveSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now()
		WHERE id=$1 AND available_seats >= $2
		RETURNING `+flightColumns, flightID, count)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		// Either the flight is missing or the seat check failed.
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id=$1)`, flightID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrInsufficientCapacity
	}
	return &f, nil
}

func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, bool, error) {
	row := r.db.QueryRow(ctx, `WITH prev AS (
			SELECT available_seats FROM flights WHERE id=$1 FOR UPDATE
		)
		UPDATE flights SET available_seats = LEAST(flights.available_seats + $2, flights.capacity), updated_at = now()
		FROM prev
		WHERE flights.id=$1
		RETURNING flights.id, flights.flight_number, flights.airline, flights.origin, flights.destination, flights.departure_time, flights.arrival_time, flights.capacity, flights.available_seats, flights.price_cents, flights.created_at, flights.updated_at, prev.available_seats`, flightID, count)
	var f domain.Flight
	var prevAvailable int
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.Capacity, &f.AvailableSeats, &f.PriceCents, &f.CreatedAt, &f.UpdatedAt, &prevAvailable); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, err
	}
	clamped := prevAvailable+count > f.Capacity
	return &f, clamped, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
