package repository

import (
	"context"

	"rideshare/internal/domain"
)

// PassengerRepository defines the persistence operations for passengers.
type PassengerRepository interface {
	// Create adds a new passenger.
	Create(ctx context.Context, passenger *domain.Passenger) error

	// GetByID retrieves a passenger by ID.
	GetByID(ctx context.Context, id string) (*domain.Passenger, error)

	// GetByEmail retrieves a passenger by email address.
	GetByEmail(ctx context.Context, email string) (*domain.Passenger, error)

	// Update updates an existing passenger.
	Update(ctx context.Context, passenger *domain.Passenger) error
}
