package repository

import (
	"context"

	"faretrack-service/internal/domain/entity"
)

// OfferArchiveRepository stores every raw offer a search produced,
// pre-deduplication, for audit and replay
type OfferArchiveRepository interface {
	Archive(ctx context.Context, searchID uint, offer *entity.RegionOffer) error
}
