// Package tickets creates ticket records and keeps their status in
// lockstep with the owning booking. It performs no capacity checks;
// callers must reserve seats through the inventory service.
package tickets

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/repository"
)

type TicketUseCase interface {
	Issue(ctx context.Context, bookingID, flightID, customerID int64, selections []domain.SeatSelection) ([]domain.Ticket, error)
	Transition(ctx context.Context, ticketIDs []int64, status domain.TicketStatus) error
	Discard(ctx context.Context, ticketIDs []int64) error
	ByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error)
	ByBookings(ctx context.Context, bookingIDs []int64) (map[int64][]domain.Ticket, error)
}

type TicketService struct {
	repo repository.TicketRepository
}

func NewTicketService(repo repository.TicketRepository) *TicketService {
	return &TicketService{repo: repo}
}

// Issue creates one reserved ticket per seat selection and returns them
// in selection order. A selection with no fare class defaults to economy.
func (s *TicketService) Issue(ctx context.Context, bookingID, flightID, customerID int64, selections []domain.SeatSelection) ([]domain.Ticket, error) {
	tickets := make([]*domain.Ticket, 0, len(selections))
	for _, sel := range selections {
		class := sel.Class
		if class == "" {
			class = domain.FareClassEconomy
		}
		if !domain.ValidFareClass(class) {
			return nil, fmt.Errorf("unknown fare class %q", sel.Class)
		}
		tickets = append(tickets, &domain.Ticket{
			TicketNumber: newTicketNumber(),
			BookingID:    bookingID,
			CustomerID:   customerID,
			FlightID:     flightID,
			SeatNumber:   sel.SeatNumber,
			Class:        class,
			Status:       domain.TicketStatusReserved,
		})
	}

	if err := s.repo.CreateBatch(ctx, tickets); err != nil {
		return nil, fmt.Errorf("create tickets: %w", err)
	}

	issued := make([]domain.Ticket, len(tickets))
	for i, t := range tickets {
		issued[i] = *t
	}
	return issued, nil
}

// Transition bulk-updates ticket status. It fails with ErrNotFound when
// any id is missing so booking and tickets cannot silently diverge.
func (s *TicketService) Transition(ctx context.Context, ticketIDs []int64, status domain.TicketStatus) error {
	return s.repo.UpdateStatus(ctx, ticketIDs, status)
}

// Discard deletes tickets outright. Used only to unwind a booking
// creation that failed partway.
func (s *TicketService) Discard(ctx context.Context, ticketIDs []int64) error {
	return s.repo.DeleteByIDs(ctx, ticketIDs)
}

func (s *TicketService) ByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error) {
	return s.repo.ByBooking(ctx, bookingID)
}

func (s *TicketService) ByBookings(ctx context.Context, bookingIDs []int64) (map[int64][]domain.Ticket, error) {
	return s.repo.ByBookings(ctx, bookingIDs)
}

func newTicketNumber() string {
	return "TK" + strings.ToUpper(uuid.NewString()[:8])
}

var _ TicketUseCase = (*TicketService)(nil)
