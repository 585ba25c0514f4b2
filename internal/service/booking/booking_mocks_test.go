package booking

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/repository"
)

// In-memory repositories for lifecycle tests. They honor the same
// conditional-update contracts as the Postgres implementations, so the
// concurrency properties of the service can be exercised for real.

type memFlightRepo struct {
	mu      sync.Mutex
	nextID  int64
	flights map[int64]domain.Flight
}

func newMemFlightRepo() *memFlightRepo {
	return &memFlightRepo{nextID: 1, flights: make(map[int64]domain.Flight)}
}

func (r *memFlightRepo) add(f domain.Flight) domain.Flight {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = r.nextID
	r.nextID++
	r.flights[f.ID] = f
	return f
}

func (r *memFlightRepo) List(ctx context.Context) ([]domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Flight, 0, len(r.flights))
	for _, f := range r.flights {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memFlightRepo) Search(ctx context.Context, criteria repository.FlightSearch) ([]domain.Flight, error) {
	return r.List(ctx)
}

func (r *memFlightRepo) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *memFlightRepo) Update(ctx context.Context, flight *domain.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flights[flight.ID]; !ok {
		return domain.ErrNotFound
	}
	r.flights[flight.ID] = *flight
	return nil
}

func (r *memFlightRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flights[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.flights, id)
	return nil
}

func (r *memFlightRepo) ReserveSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	r.mu.Lock()
	defer r.mu.Unlock()
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

type memBookingRepo struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]domain.Booking
	byRef    map[string]int64
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{nextID: 1, bookings: make(map[int64]domain.Booking), byRef: make(map[string]int64)}
}

func (r *memBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byRef[booking.Reference]; dup {
		return errors.New("duplicate booking reference")
	}
	booking.ID = r.nextID
	r.nextID++
	booking.Status = domain.BookingStatusPending
	r.bookings[booking.ID] = *booking
	r.byRef[booking.Reference] = booking.ID
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *memBookingRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memBookingRepo) ConfirmPending(ctx context.Context, bookingID, paymentID int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b.Status != domain.BookingStatusPending {
		return nil, domain.ErrInvalidState
	}
	b.Status = domain.BookingStatusConfirmed
	pid := paymentID
	b.PaymentID = &pid
	r.bookings[bookingID] = b
	return &b, nil
}

func (r *memBookingRepo) CancelActive(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusConfirmed {
		return nil, domain.ErrInvalidState
	}
	b.Status = domain.BookingStatusCancelled
	r.bookings[bookingID] = b
	return &b, nil
}

func (r *memBookingRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bookings[id]; ok {
		delete(r.byRef, b.Reference)
		delete(r.bookings, id)
	}
	return nil
}

func (r *memBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

var _ repository.BookingRepository = (*memBookingRepo)(nil)

type memTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{nextID: 1, tickets: make(map[int64]domain.Ticket)}
}

func (r *memTicketRepo) CreateBatch(ctx context.Context, tickets []*domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tickets {
		t.ID = r.nextID
		r.nextID++
		r.tickets[t.ID] = *t
	}
	return nil
}

func (r *memTicketRepo) UpdateStatus(ctx context.Context, ids []int64, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if _, ok := r.tickets[id]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, id := range ids {
		t := r.tickets[id]
		t.Status = status
		r.tickets[id] = t
	}
	return nil
}

func (r *memTicketRepo) ByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Ticket, 0)
	for _, t := range r.tickets {
		if t.BookingID == bookingID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTicketRepo) ByBookings(ctx context.Context, bookingIDs []int64) (map[int64][]domain.Ticket, error) {
	byBooking := make(map[int64][]domain.Ticket)
	for _, id := range bookingIDs {
		tickets, _ := r.ByBooking(ctx, id)
		if len(tickets) > 0 {
			byBooking[id] = tickets
		}
	}
	return byBooking, nil
}

func (r *memTicketRepo) DeleteByIDs(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.tickets, id)
	}
	return nil
}

func (r *memTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

var _ repository.TicketRepository = (*memTicketRepo)(nil)

type memPaymentRepo struct {
	mu       sync.Mutex
	nextID   int64
	payments map[int64]domain.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{nextID: 1, payments: make(map[int64]domain.Payment)}
}

func (r *memPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = r.nextID
	r.nextID++
	r.payments[payment.ID] = *payment
	return nil
}

func (r *memPaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memPaymentRepo) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Status = status
	r.payments[id] = p
	return &p, nil
}

func (r *memPaymentRepo) ByIDs(ctx context.Context, ids []int64) (map[int64]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]domain.Payment, len(ids))
	for _, id := range ids {
		if p, ok := r.payments[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

var _ repository.PaymentRepository = (*memPaymentRepo)(nil)

// failingInventory rejects every reservation, for exercising the
// compensation path in CreateBooking.
type failingInventory struct {
	err error
}

func (f *failingInventory) ReserveSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error) {
	return nil, f.err
}

func (f *failingInventory) ReleaseSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error) {
	return nil, f.err
}

var _ Inventory = (*failingInventory)(nil)
