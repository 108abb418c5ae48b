package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment is the settlement record produced when a ride completes.
// It is append-only: status moves forward, amounts never change.
type Payment struct {
	ID            string
	RideID        string
	Amount        float64
	Type          PaymentMethod
	Status        PaymentStatus
	TransactionID string
	CreatedAt     time.Time
}
