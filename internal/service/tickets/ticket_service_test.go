package tickets

import (
	"context"
	"strings"
	"testing"

	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTicketRepo struct {
	nextID  int64
	tickets map[int64]domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{nextID: 1, tickets: make(map[int64]domain.Ticket)}
}

func (r *memTicketRepo) CreateBatch(ctx context.Context, tickets []*domain.Ticket) error {
	for _, t := range tickets {
		t.ID = r.nextID
		r.nextID++
		r.tickets[t.ID] = *t
	}
	return nil
}

func (r *memTicketRepo) UpdateStatus(ctx context.Context, ids []int64, status domain.TicketStatus) error {
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
	out := make([]domain.Ticket, 0)
	for _, t := range r.tickets {
		if t.BookingID == bookingID {
			out = append(out, t)
		}
	}
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
	for _, id := range ids {
		delete(r.tickets, id)
	}
	return nil
}

var _ repository.TicketRepository = (*memTicketRepo)(nil)

func TestIssue_CreatesReservedTicketsInOrder(t *testing.T) {
	service := NewTicketService(newMemTicketRepo())

	issued, err := service.Issue(context.Background(), 1, 7, 42, []domain.SeatSelection{
		{SeatNumber: "10A", Class: domain.FareClassBusiness},
		{SeatNumber: "22F"},
	})
	require.NoError(t, err)
	require.Len(t, issued, 2)

	assert.Equal(t, "10A", issued[0].SeatNumber)
	assert.Equal(t, domain.FareClassBusiness, issued[0].Class)
	// Missing class defaults to economy.
	assert.Equal(t, domain.FareClassEconomy, issued[1].Class)

	for _, ticket := range issued {
		assert.Equal(t, domain.TicketStatusReserved, ticket.Status)
		assert.True(t, strings.HasPrefix(ticket.TicketNumber, "TK"))
		assert.Len(t, ticket.TicketNumber, 10)
		assert.Equal(t, int64(1), ticket.BookingID)
		assert.Equal(t, int64(7), ticket.FlightID)
		assert.Equal(t, int64(42), ticket.CustomerID)
		assert.NotZero(t, ticket.ID)
	}
}

func TestIssue_RejectsUnknownFareClass(t *testing.T) {
	repo := newMemTicketRepo()
	service := NewTicketService(repo)

	_, err := service.Issue(context.Background(), 1, 7, 42, []domain.SeatSelection{
		{SeatNumber: "1A", Class: domain.FareClass("premium")},
	})
	assert.Error(t, err)
	assert.Empty(t, repo.tickets)
}

func TestTransition_FailsWhenAnyIDMissing(t *testing.T) {
	service := NewTicketService(newMemTicketRepo())

	issued, err := service.Issue(context.Background(), 1, 7, 42, []domain.SeatSelection{{SeatNumber: "1A"}})
	require.NoError(t, err)

	err = service.Transition(context.Background(), []int64{issued[0].ID, 999}, domain.TicketStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The present ticket must not have moved.
	remaining, err := service.ByBooking(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, domain.TicketStatusReserved, remaining[0].Status)
}

func TestDiscard_RemovesTickets(t *testing.T) {
	repo := newMemTicketRepo()
	service := NewTicketService(repo)

	issued, err := service.Issue(context.Background(), 1, 7, 42, []domain.SeatSelection{{SeatNumber: "1A"}, {SeatNumber: "1B"}})
	require.NoError(t, err)

	ids := []int64{issued[0].ID, issued[1].ID}
	require.NoError(t, service.Discard(context.Background(), ids))
	assert.Empty(t, repo.tickets)
}
