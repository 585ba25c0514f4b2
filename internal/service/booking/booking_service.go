// Package booking orchestrates the booking lifecycle: seat
// reservation, ticket issuance, payment and cancellation. It is the
// only writer of cross-entity state and owns the compensation logic
// for multi-step operations.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/kafka"
	"github.com/nkotelnikov/flightbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*BookingResult, error)
	ProcessPayment(ctx context.Context, bookingID int64, input PaymentInput) (*PaymentResult, error)
	CancelBooking(ctx context.Context, bookingID, requesterID int64, requesterRole string) (*domain.Booking, error)
	UserBookings(ctx context.Context, customerID int64) ([]domain.Booking, error)
}

// Inventory, TicketIssuer and PaymentLedger are the collaborators the
// manager drives. They are declared here, on the consumer side, so the
// service can be tested against in-memory implementations.
type Inventory interface {
	ReserveSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error)
	ReleaseSeats(ctx context.Context, flightID int64, count int) (*domain.Flight, error)
}

type TicketIssuer interface {
	Issue(ctx context.Context, bookingID, flightID, customerID int64, selections []domain.SeatSelection) ([]domain.Ticket, error)
	Transition(ctx context.Context, ticketIDs []int64, status domain.TicketStatus) error
	Discard(ctx context.Context, ticketIDs []int64) error
	ByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error)
	ByBookings(ctx context.Context, bookingIDs []int64) (map[int64][]domain.Ticket, error)
}

type PaymentLedger interface {
	Record(ctx context.Context, customerID, amountCents int64, method domain.PaymentMethod, currency string) (*domain.Payment, error)
	Refund(ctx context.Context, paymentID int64) (*domain.Payment, error)
	ByIDs(ctx context.Context, paymentIDs []int64) (map[int64]domain.Payment, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type CreateBookingInput struct {
	FlightID        int64
	CustomerID      int64
	Seats           []domain.SeatSelection
	Contact         domain.ContactInfo
	SpecialRequests string
}

type PaymentInput struct {
	Method   domain.PaymentMethod
	Currency string
}

type BookingResult struct {
	Booking *domain.Booking
	Flight  *domain.Flight
}

type PaymentResult struct {
	Booking *domain.Booking
	Payment *domain.Payment
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	inventory          Inventory
	issuer             TicketIssuer
	ledger             PaymentLedger
	producer           Producer
	cache              Cache
	bookingTopic       string
	notificationsTopic string
	log                *logrus.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	inventory Inventory,
	issuer TicketIssuer,
	ledger PaymentLedger,
	log *logrus.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:  bookings,
		flights:   flights,
		inventory: inventory,
		issuer:    issuer,
		ledger:    ledger,
		log:       log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking validates availability, persists a pending booking with
// one reserved ticket per seat, and decrements the flight's seat
// counter last. The seat decrement is the only step that can lose a
// race, and when it does every row created before it is removed again,
// so callers never observe a half-created booking.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*BookingResult, error) {
	if len(input.Seats) == 0 {
		return nil, errors.New("at least one seat is required")
	}
	if input.Contact.Email == "" {
		return nil, errors.New("contact email is required")
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.AvailableSeats < len(input.Seats) {
		return nil, fmt.Errorf("flight %d has %d seats left, %d requested: %w",
			flight.ID, flight.AvailableSeats, len(input.Seats), domain.ErrInsufficientCapacity)
	}

	booking := &domain.Booking{
		Reference:        newReference("BK"),
		CustomerID:       input.CustomerID,
		TotalAmountCents: flight.PriceCents * int64(len(input.Seats)),
		Contact:          input.Contact,
		SpecialRequests:  input.SpecialRequests,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	tickets, err := s.issuer.Issue(ctx, booking.ID, input.FlightID, input.CustomerID, input.Seats)
	if err != nil {
		_ = s.bookings.Delete(ctx, booking.ID)
		return nil, fmt.Errorf("issue tickets: %w", err)
	}

	updatedFlight, err := s.inventory.ReserveSeats(ctx, input.FlightID, len(input.Seats))
	if err != nil {
		// Lost the seat race after persisting booking and tickets.
		// Unwind both before reporting the failure.
		_ = s.issuer.Discard(ctx, ticketIDs(tickets))
		_ = s.bookings.Delete(ctx, booking.ID)
		return nil, err
	}

	booking.Tickets = tickets
	s.invalidateFlights(ctx)
	s.publish(ctx, "booking_created", booking)
	return &BookingResult{Booking: booking, Flight: updatedFlight}, nil
}

// ProcessPayment settles the booking's total amount and confirms the
// booking and its tickets. The pending to confirmed transition is a
// conditional update, so concurrent payments for the same booking
// cannot both confirm it.
func (s *BookingService) ProcessPayment(ctx context.Context, bookingID int64, input PaymentInput) (*PaymentResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, fmt.Errorf("booking %s is %s, only pending bookings can be paid: %w",
			booking.Reference, booking.Status, domain.ErrInvalidState)
	}

	payment, err := s.ledger.Record(ctx, booking.CustomerID, booking.TotalAmountCents, input.Method, input.Currency)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.bookings.ConfirmPending(ctx, bookingID, payment.ID)
	if err != nil {
		// The payment has been settled but the booking did not move to
		// confirmed. Surface it loudly, this needs reconciliation.
		s.logError(err, logrus.Fields{"booking_id": bookingID, "payment_id": payment.ID},
			"payment recorded but booking confirmation failed")
		return nil, fmt.Errorf("payment %d settled but booking %d not confirmed: %w",
			payment.ID, bookingID, domain.ErrInconsistency)
	}

	tickets, err := s.issuer.ByBooking(ctx, bookingID)
	if err == nil {
		err = s.issuer.Transition(ctx, ticketIDs(tickets), domain.TicketStatusConfirmed)
	}
	if err != nil {
		s.logError(err, logrus.Fields{"booking_id": bookingID},
			"booking confirmed but ticket transition failed")
		return nil, fmt.Errorf("booking %d confirmed but tickets not updated: %w",
			bookingID, domain.ErrInconsistency)
	}
	for i := range tickets {
		tickets[i].Status = domain.TicketStatusConfirmed
	}

	confirmed.Tickets = tickets
	confirmed.Payment = payment
	s.publish(ctx, "booking_confirmed", confirmed)
	return &PaymentResult{Booking: confirmed, Payment: payment}, nil
}

// CancelBooking cancels a pending or confirmed booking, cancels its
// tickets, returns the seats to the flight and refunds the payment if
// one exists. Double-cancel fails with ErrInvalidState so seats are
// never credited twice.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requesterID int64, requesterRole string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != requesterID && requesterRole != RoleStaff && requesterRole != RoleAdmin {
		return nil, fmt.Errorf("requester %d may not cancel booking %s: %w",
			requesterID, booking.Reference, domain.ErrForbidden)
	}

	cancelled, err := s.bookings.CancelActive(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	tickets, err := s.issuer.ByBooking(ctx, bookingID)
	if err == nil {
		err = s.issuer.Transition(ctx, ticketIDs(tickets), domain.TicketStatusCancelled)
	}
	if err != nil {
		s.logError(err, logrus.Fields{"booking_id": bookingID},
			"booking cancelled but ticket transition failed")
		return nil, fmt.Errorf("booking %d cancelled but tickets not updated: %w",
			bookingID, domain.ErrInconsistency)
	}
	for i := range tickets {
		tickets[i].Status = domain.TicketStatusCancelled
	}

	if len(tickets) > 0 {
		if _, err := s.inventory.ReleaseSeats(ctx, tickets[0].FlightID, len(tickets)); err != nil {
			s.logError(err, logrus.Fields{"booking_id": bookingID, "flight_id": tickets[0].FlightID},
				"booking cancelled but seats not released")
			return nil, fmt.Errorf("booking %d cancelled but %d seats not released: %w",
				bookingID, len(tickets), domain.ErrInconsistency)
		}
		s.invalidateFlights(ctx)
	}

	if cancelled.PaymentID != nil {
		payment, err := s.ledger.Refund(ctx, *cancelled.PaymentID)
		if err != nil {
			s.logError(err, logrus.Fields{"booking_id": bookingID, "payment_id": *cancelled.PaymentID},
				"booking cancelled but refund failed")
			return nil, fmt.Errorf("booking %d cancelled but payment %d not refunded: %w",
				bookingID, *cancelled.PaymentID, domain.ErrInconsistency)
		}
		cancelled.Payment = payment
	}

	cancelled.Tickets = tickets
	s.publish(ctx, "booking_cancelled", cancelled)
	return cancelled, nil
}

// UserBookings returns the customer's bookings, newest first, with
// tickets and payments resolved in one batched query each.
func (s *BookingService) UserBookings(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	bookingIDs := make([]int64, len(bookings))
	paymentIDs := make([]int64, 0, len(bookings))
	for i, b := range bookings {
		bookingIDs[i] = b.ID
		if b.PaymentID != nil {
			paymentIDs = append(paymentIDs, *b.PaymentID)
		}
	}

	ticketsByBooking, err := s.issuer.ByBookings(ctx, bookingIDs)
	if err != nil {
		return nil, err
	}
	payments, err := s.ledger.ByIDs(ctx, paymentIDs)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		bookings[i].Tickets = ticketsByBooking[bookings[i].ID]
		if bookings[i].PaymentID != nil {
			if p, ok := payments[*bookings[i].PaymentID]; ok {
				payment := p
				bookings[i].Payment = &payment
			}
		}
	}
	return bookings, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:             eventType,
		BookingID:        booking.ID,
		Reference:        booking.Reference,
		CustomerID:       booking.CustomerID,
		Status:           string(booking.Status),
		TotalAmountCents: booking.TotalAmountCents,
		Seats:            len(booking.Tickets),
		Email:            booking.Contact.Email,
	}
	if len(booking.Tickets) > 0 {
		event.FlightID = booking.Tickets[0].FlightID
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
		s.logError(err, logrus.Fields{"booking": booking.Reference, "event": eventType},
			"failed to publish booking event")
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
			s.logError(err, logrus.Fields{"booking": booking.Reference, "event": eventType},
				"failed to publish notification event")
		}
	}
}

func (s *BookingService) invalidateFlights(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.InvalidateFlights(ctx)
}

func (s *BookingService) logError(err error, fields logrus.Fields, msg string) {
	if s.log == nil {
		return
	}
	s.log.WithFields(fields).WithError(err).Error(msg)
}

func ticketIDs(tickets []domain.Ticket) []int64 {
	ids := make([]int64, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	return ids
}

// newReference builds an opaque human-readable reference such as
// BK3F2A91C4. Uniqueness is ultimately enforced by the storage layer's
// unique constraint.
func newReference(prefix string) string {
	return prefix + strings.ToUpper(uuid.NewString()[:8])
}

var _ BookingUseCase = (*BookingService)(nil)
