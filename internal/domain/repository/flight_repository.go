package repository

import (
	"context"

	"faretrack-service/internal/domain/entity"
)

// FlightRepository defines the interface for flight persistence
type FlightRepository interface {
	Create(ctx context.Context, flight *entity.Flight) error
	GetByID(ctx context.Context, id uint) (*entity.Flight, error)
}
