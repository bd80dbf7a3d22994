package repository

import (
	"context"
	"errors"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// Flights GORM model for database mapping
type Flights struct {
	ID           uint   `gorm:"primaryKey"`
	FlightNumber string `gorm:"column:flight_number;index:idx_flight_identity"`
	AirlineCode  string `gorm:"column:airline_code"`
	AirlineName  string `gorm:"column:airline_name"`

	OriginCode      string `gorm:"column:origin_code"`
	OriginName      string `gorm:"column:origin_name"`
	DestinationCode string `gorm:"column:destination_code"`
	DestinationName string `gorm:"column:destination_name"`

	DepartureTime   time.Time `gorm:"column:departure_time;index:idx_flight_identity"`
	ArrivalTime     time.Time `gorm:"column:arrival_time;index:idx_flight_identity"`
	DurationMinutes int       `gorm:"column:duration_minutes"`

	BasePrice  float64 `gorm:"column:base_price"`
	Currency   string  `gorm:"column:currency;default:USD"`
	Taxes      float64 `gorm:"column:taxes"`
	Fees       float64 `gorm:"column:fees"`
	TotalPrice float64 `gorm:"column:total_price"`

	AvailableSeats *int   `gorm:"column:available_seats"`
	BookingClass   string `gorm:"column:booking_class"`
	AircraftType   string `gorm:"column:aircraft_type"`
	Stops          int    `gorm:"column:stops"`
	IsDirect       bool   `gorm:"column:is_direct"`

	ExternalID string `gorm:"column:external_id"`
	SourceAPI  string `gorm:"column:source_api"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "flights"
}

// Create persists a new flight row and backfills the generated ID
func (r *GormFlightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	model := toFlightModel(flight)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	flight.ID = model.ID
	flight.CreatedAt = model.CreatedAt
	flight.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID finds a flight by its identifier
func (r *GormFlightRepository) GetByID(ctx context.Context, id uint) (*entity.Flight, error) {
	var model Flights
	result := r.db.WithContext(ctx).First(&model, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, result.Error
	}

	return toFlightEntity(&model), nil
}

func toFlightModel(flight *entity.Flight) *Flights {
	return &Flights{
		ID:              flight.ID,
		FlightNumber:    flight.FlightNumber,
		AirlineCode:     flight.AirlineCode,
		AirlineName:     flight.AirlineName,
		OriginCode:      flight.OriginCode,
		OriginName:      flight.OriginName,
		DestinationCode: flight.DestinationCode,
		DestinationName: flight.DestinationName,
		DepartureTime:   flight.DepartureTime,
		ArrivalTime:     flight.ArrivalTime,
		DurationMinutes: flight.DurationMinutes,
		BasePrice:       flight.BasePrice,
		Currency:        flight.Currency,
		Taxes:           flight.Taxes,
		Fees:            flight.Fees,
		TotalPrice:      flight.TotalPrice,
		AvailableSeats:  flight.AvailableSeats,
		BookingClass:    flight.BookingClass,
		AircraftType:    flight.AircraftType,
		Stops:           flight.Stops,
		IsDirect:        flight.IsDirect,
		ExternalID:      flight.ExternalID,
		SourceAPI:       flight.SourceAPI,
	}
}

func toFlightEntity(model *Flights) *entity.Flight {
	return &entity.Flight{
		ID:              model.ID,
		FlightNumber:    model.FlightNumber,
		AirlineCode:     model.AirlineCode,
		AirlineName:     model.AirlineName,
		OriginCode:      model.OriginCode,
		OriginName:      model.OriginName,
		DestinationCode: model.DestinationCode,
		DestinationName: model.DestinationName,
		DepartureTime:   model.DepartureTime,
		ArrivalTime:     model.ArrivalTime,
		DurationMinutes: model.DurationMinutes,
		BasePrice:       model.BasePrice,
		Currency:        model.Currency,
		Taxes:           model.Taxes,
		Fees:            model.Fees,
		TotalPrice:      model.TotalPrice,
		AvailableSeats:  model.AvailableSeats,
		BookingClass:    model.BookingClass,
		AircraftType:    model.AircraftType,
		Stops:           model.Stops,
		IsDirect:        model.IsDirect,
		ExternalID:      model.ExternalID,
		SourceAPI:       model.SourceAPI,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
