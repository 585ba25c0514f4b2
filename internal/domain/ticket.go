package domain

import "time"

type TicketStatus string

const (
	TicketStatusReserved  TicketStatus = "reserved"
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusCancelled TicketStatus = "cancelled"
)

type FareClass string

const (
	FareClassEconomy  FareClass = "economy"
	FareClassBusiness FareClass = "business"
	FareClassFirst    FareClass = "first"
)

// SeatSelection is one requested seat on a flight. Fare class does not
// affect seat accounting, only attribution on the ticket.
type SeatSelection struct {
	SeatNumber string
	Class      FareClass
}

type Ticket struct {
	ID           int64
	TicketNumber string
	BookingID    int64
	CustomerID   int64
	FlightID     int64
	SeatNumber   string
	Class        FareClass
	Status       TicketStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidFareClass reports whether c is one of the known fare classes.
func ValidFareClass(c FareClass) bool {
	switch c {
	case FareClassEconomy, FareClassBusiness, FareClassFirst:
		return true
	}
	return false
}
