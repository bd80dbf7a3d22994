package repository

import (
	"context"

	"faretrack-service/internal/domain/entity"
)

// RegionSwitcher models the VPN/proxy hand-off that makes subsequent
// provider calls appear to originate from a region. Activate returns a
// session owned by exactly one fan-out task; a failed activation means
// the caller skips the region, it is never an error that propagates.
type RegionSwitcher interface {
	Activate(ctx context.Context, region string) (*entity.RegionSession, error)
	Disconnect(ctx context.Context, session *entity.RegionSession) error
	AvailableRegions() []entity.Region
	BestRegionFor(country string) string
}
