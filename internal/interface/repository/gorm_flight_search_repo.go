package repository

import (
	"context"
	"encoding/json"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormFlightSearchRepository implements the FlightSearchRepository interface
type GormFlightSearchRepository struct {
	db *gorm.DB
}

// NewGormFlightSearchRepository creates a new GORM flight search repository
func NewGormFlightSearchRepository(db *gorm.DB) repository.FlightSearchRepository {
	return &GormFlightSearchRepository{
		db: db,
	}
}

// FlightSearches GORM model for database mapping
type FlightSearches struct {
	ID     uint  `gorm:"primaryKey"`
	UserID *uint `gorm:"column:user_id;index"`

	OriginCode        string         `gorm:"column:origin_code"`
	DestinationCode   string         `gorm:"column:destination_code"`
	DepartureDate     time.Time      `gorm:"column:departure_date"`
	ReturnDate        *time.Time     `gorm:"column:return_date"`
	Passengers        int            `gorm:"column:passengers;default:1"`
	FlightType        string         `gorm:"column:flight_type;default:one_way"`
	PreferredAirlines datatypes.JSON `gorm:"column:preferred_airlines"`
	MaxStops          int            `gorm:"column:max_stops;default:2"`
	MaxPrice          *float64       `gorm:"column:max_price"`
	PreferredCurrency string         `gorm:"column:preferred_currency;default:USD"`

	SearchRegion    string    `gorm:"column:search_region"`
	SearchTimestamp time.Time `gorm:"column:search_timestamp;autoCreateTime"`
	ResultsCount    int       `gorm:"column:results_count;default:0"`
}

// TableName overrides the default table name
func (FlightSearches) TableName() string {
	return "flight_searches"
}

// Create persists a new search record and backfills the generated ID
func (r *GormFlightSearchRepository) Create(ctx context.Context, search *entity.FlightSearch) error {
	var airlines datatypes.JSON
	if len(search.PreferredAirlines) > 0 {
		encoded, err := json.Marshal(search.PreferredAirlines)
		if err != nil {
			return err
		}
		airlines = datatypes.JSON(encoded)
	}

	model := &FlightSearches{
		UserID:            search.UserID,
		OriginCode:        search.OriginCode,
		DestinationCode:   search.DestinationCode,
		DepartureDate:     search.DepartureDate,
		ReturnDate:        search.ReturnDate,
		Passengers:        search.Passengers,
		FlightType:        string(search.FlightType),
		PreferredAirlines: airlines,
		MaxStops:          search.MaxStops,
		MaxPrice:          search.MaxPrice,
		PreferredCurrency: search.PreferredCurrency,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	search.ID = model.ID
	search.SearchTimestamp = model.SearchTimestamp
	return nil
}

// UpdateResults records the final result count and last queried region
// for the run that created the record
func (r *GormFlightSearchRepository) UpdateResults(ctx context.Context, searchID uint, resultsCount int, lastRegion string) error {
	return r.db.WithContext(ctx).
		Model(&FlightSearches{}).
		Where("id = ?", searchID).
		Updates(map[string]interface{}{
			"results_count": resultsCount,
			"search_region": lastRegion,
		}).Error
}
