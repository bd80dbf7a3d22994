package entity

import (
	"errors"
	"time"
)

// SearchCriteria is the immutable input of one pipeline run
type SearchCriteria struct {
	OriginCode        string
	DestinationCode   string
	DepartureDate     time.Time
	ReturnDate        *time.Time
	Passengers        int
	FlightType        FlightType
	PreferredAirlines []string
	MaxStops          int
	MaxPrice          *float64
	PreferredCurrency string
}

var (
	ErrMissingRoute     = errors.New("origin and destination codes are required")
	ErrInvalidPassenger = errors.New("passenger count must be at least 1")
	ErrInvalidMaxStops  = errors.New("max stops must not be negative")
)

// Validate checks the criteria invariants before a search run
func (c *SearchCriteria) Validate() error {
	if c.OriginCode == "" || c.DestinationCode == "" {
		return ErrMissingRoute
	}
	if c.Passengers < 1 {
		return ErrInvalidPassenger
	}
	if c.MaxStops < 0 {
		return ErrInvalidMaxStops
	}
	return nil
}

// FlightSearch is the persisted record of one pipeline invocation.
// Only the aggregator that created it mutates it, and only during the
// run; afterwards it is immutable.
type FlightSearch struct {
	ID     uint
	UserID *uint

	OriginCode        string
	DestinationCode   string
	DepartureDate     time.Time
	ReturnDate        *time.Time
	Passengers        int
	FlightType        FlightType
	PreferredAirlines []string
	MaxStops          int
	MaxPrice          *float64
	PreferredCurrency string

	SearchRegion    string
	SearchTimestamp time.Time
	ResultsCount    int
}
