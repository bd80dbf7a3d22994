package entity

import (
	"fmt"
	"time"
)

// Region is a geographic market whose upstream provider may quote
// different prices for identical criteria
type Region struct {
	Code    string
	Name    string
	Country string
}

// RegionSession is the activation context one fan-out task owns for the
// duration of its own query. Tasks never share a session, so there is
// no process-wide "current region" to race on.
type RegionSession struct {
	Region      string
	Market      string
	Locale      string
	SessionKey  string
	ActivatedAt time.Time
}

// RegionOffer is one raw priced itinerary from a single region query.
// It is consumed immediately by the aggregator and never persisted
// directly.
type RegionOffer struct {
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
	Taxes      float64
	Fees       float64
	TotalPrice float64
	Currency   string

	Stops          int
	IsDirect       bool
	AvailableSeats *int
	BookingClass   string
	AircraftType   string

	SourceRegion string
	ExternalID   string
	RawDocument  string
}

// IdentityKey returns the dedup key: two offers with the same flight
// number, departure and arrival are the same flight.
func (o *RegionOffer) IdentityKey() string {
	return fmt.Sprintf("%s|%d|%d", o.FlightNumber, o.DepartureTime.UTC().Unix(), o.ArrivalTime.UTC().Unix())
}
