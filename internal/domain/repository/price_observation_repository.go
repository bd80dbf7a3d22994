package repository

import (
	"context"
	"time"

	"faretrack-service/internal/domain/entity"
)

// PriceObservationRepository defines the append-only price time series.
// There is no update or delete: every observation is kept, duplicates
// included, to feed trend analysis.
type PriceObservationRepository interface {
	Append(ctx context.Context, obs *entity.PriceObservation) error
	// ListByFlight returns observations recorded at or after since,
	// most recent first.
	ListByFlight(ctx context.Context, flightID uint, since time.Time) ([]*entity.PriceObservation, error)
	// ListByFlightAsc returns the full series oldest first, the order
	// the forecaster trains on.
	ListByFlightAsc(ctx context.Context, flightID uint) ([]*entity.PriceObservation, error)
}
