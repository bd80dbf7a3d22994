package repository

import (
	"context"

	"faretrack-service/internal/domain/entity"
)

// FlightSearchRepository defines the interface for search record operations
type FlightSearchRepository interface {
	Create(ctx context.Context, search *entity.FlightSearch) error
	// UpdateResults closes out the run that created the record with the
	// final result count and the region last queried.
	UpdateResults(ctx context.Context, searchID uint, resultsCount int, lastRegion string) error
}
