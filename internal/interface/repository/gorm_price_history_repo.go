package repository

import (
	"context"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormPriceHistoryRepository implements the PriceObservationRepository interface
type GormPriceHistoryRepository struct {
	db *gorm.DB
}

// NewGormPriceHistoryRepository creates a new GORM price history repository
func NewGormPriceHistoryRepository(db *gorm.DB) repository.PriceObservationRepository {
	return &GormPriceHistoryRepository{
		db: db,
	}
}

// PriceHistory GORM model for database mapping
type PriceHistory struct {
	ID         uint      `gorm:"primaryKey"`
	SearchID   uint      `gorm:"column:search_id;index"`
	FlightID   *uint     `gorm:"column:flight_id;index:idx_price_history_flight_recorded"`
	Price      float64   `gorm:"column:price"`
	Currency   string    `gorm:"column:currency"`
	Region     string    `gorm:"column:region"`
	RecordedAt time.Time `gorm:"column:recorded_at;autoCreateTime;index:idx_price_history_flight_recorded"`
}

// TableName overrides the default table name
func (PriceHistory) TableName() string {
	return "price_history"
}

// Append inserts one observation. The table is append-only: nothing in
// the pipeline updates or deletes rows.
func (r *GormPriceHistoryRepository) Append(ctx context.Context, obs *entity.PriceObservation) error {
	model := &PriceHistory{
		SearchID: obs.SearchID,
		FlightID: obs.FlightID,
		Price:    obs.Price,
		Currency: obs.Currency,
		Region:   obs.Region,
	}
	if !obs.RecordedAt.IsZero() {
		model.RecordedAt = obs.RecordedAt
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	obs.ID = model.ID
	obs.RecordedAt = model.RecordedAt
	return nil
}

// ListByFlight returns observations recorded at or after since, most
// recent first
func (r *GormPriceHistoryRepository) ListByFlight(ctx context.Context, flightID uint, since time.Time) ([]*entity.PriceObservation, error) {
	var models []PriceHistory
	result := r.db.WithContext(ctx).
		Where("flight_id = ? AND recorded_at >= ?", flightID, since).
		Order("recorded_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return toObservationEntities(models), nil
}

// ListByFlightAsc returns the full series oldest first
func (r *GormPriceHistoryRepository) ListByFlightAsc(ctx context.Context, flightID uint) ([]*entity.PriceObservation, error) {
	var models []PriceHistory
	result := r.db.WithContext(ctx).
		Where("flight_id = ?", flightID).
		Order("recorded_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return toObservationEntities(models), nil
}

func toObservationEntities(models []PriceHistory) []*entity.PriceObservation {
	observations := make([]*entity.PriceObservation, 0, len(models))
	for _, model := range models {
		observations = append(observations, &entity.PriceObservation{
			ID:         model.ID,
			SearchID:   model.SearchID,
			FlightID:   model.FlightID,
			Price:      model.Price,
			Currency:   model.Currency,
			Region:     model.Region,
			RecordedAt: model.RecordedAt,
		})
	}
	return observations
}
