package domain

import "time"

// Passenger represents a rider in the system.
//
// WalletBalance is mutated only through the wallet payment strategy and
// wallet top-ups; it never goes negative.
type Passenger struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	WalletBalance float64
	CreatedAt     time.Time
}
