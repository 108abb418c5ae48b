package repository

import (
	"context"

	"rideshare/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByRide retrieves the payment settled against the given ride.
	// Returns nil if the ride has no payment yet.
	GetByRide(ctx context.Context, rideID string) (*domain.Payment, error)

	// GetByPassenger retrieves all payments for rides requested by the passenger.
	GetByPassenger(ctx context.Context, passengerID string) ([]*domain.Payment, error)

	// UpdateStatus updates the status of a payment.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}
