package entity

import (
	"fmt"
	"time"
)

// FlightType classifies the itinerary shape of a search
type FlightType string

const (
	FlightTypeOneWay    FlightType = "one_way"
	FlightTypeRoundTrip FlightType = "round_trip"
	FlightTypeMultiCity FlightType = "multi_city"
)

// Flight is the canonical, deduplicated record derived from the best
// RegionOffer for one (flight number, departure, arrival) identity.
// Downstream consumers treat it as read-only.
type Flight struct {
	ID           uint
	FlightNumber string
	AirlineCode  string
	AirlineName  string

	OriginCode      string
	OriginName      string
	DestinationCode string
	DestinationName string

	DepartureTime   time.Time
	ArrivalTime     time.Time
	DurationMinutes int

	BasePrice  float64
	Currency   string
	Taxes      float64
	Fees       float64
	TotalPrice float64

	AvailableSeats *int
	BookingClass   string
	AircraftType   string
	Stops          int
	IsDirect       bool

	ExternalID string
	SourceAPI  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IdentityKey returns the dedup key shared with RegionOffer.
func (f *Flight) IdentityKey() string {
	return fmt.Sprintf("%s|%d|%d", f.FlightNumber, f.DepartureTime.UTC().Unix(), f.ArrivalTime.UTC().Unix())
}
