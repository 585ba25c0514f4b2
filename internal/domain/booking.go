package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type ContactInfo struct {
	Email string
	Phone string
}

type Booking struct {
	ID               int64
	Reference        string
	CustomerID       int64
	TotalAmountCents int64
	PaymentID        *int64
	Status           BookingStatus
	Contact          ContactInfo
	SpecialRequests  string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Resolved relations, populated by the booking service for reads.
	Tickets []Ticket
	Payment *Payment
}
