package repository

import (
	"context"

	"faretrack-service/internal/domain/entity"
)

// FareProvider fetches raw flight offers for one (criteria, region)
// pair. Implementations absorb upstream failures (timeouts, malformed
// payloads, rate limits) and return an empty slice instead, so one
// region's outage never aborts a whole search.
type FareProvider interface {
	Fetch(ctx context.Context, session *entity.RegionSession, criteria *entity.SearchCriteria) ([]entity.RegionOffer, error)
}
