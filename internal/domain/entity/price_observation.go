package entity

import "time"

// PriceObservation is one append-only sample of the price time series.
// Rows are never updated or deleted by the pipeline; retention sweeps
// live outside this core.
type PriceObservation struct {
	ID         uint
	SearchID   uint
	FlightID   *uint
	Price      float64
	Currency   string
	Region     string
	RecordedAt time.Time
}
