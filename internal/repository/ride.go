package repository

import (
	"context"

	"rideshare/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByStatus retrieves all rides in the given status.
	GetByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error)

	// GetActive retrieves all rides in a non-terminal status.
	GetActive(ctx context.Context) ([]*domain.Ride, error)

	// GetByPassenger retrieves all rides requested by the given passenger.
	GetByPassenger(ctx context.Context, passengerID string) ([]*domain.Ride, error)

	// GetByDriver retrieves all rides served by the given driver.
	GetByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error)

	// CountActive returns the number of rides in a non-terminal status.
	CountActive(ctx context.Context) (int, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error
}
