package domain

import "time"

type Flight struct {
	ID             int64
	FlightNumber   string
	Airline        string
	Origin         string
	Destination    string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	Capacity       int
	AvailableSeats int
	PriceCents     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
