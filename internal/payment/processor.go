package payment

import "context"

// CardProcessor is the interface to the external card rail. Charge authorizes
// and captures the amount, returning the rail's transaction id; Refund issues
// a partial or full refund against a previous charge.
type CardProcessor interface {
	Charge(ctx context.Context, amount float64, description string) (string, error)
	Refund(ctx context.Context, transactionID string, amount float64) error
}
