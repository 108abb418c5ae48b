package service

import (
	"context"
	"fmt"
	"log"

	"rideshare/internal/payment"
	"rideshare/internal/repository"
)

// PaymentStrategy settles a fare against a funding source. ProcessPayment
// reports false when the funding source declines; errors are reserved for
// persistence faults. RefundPayment credits a previously settled amount back.
//
// Callers are responsible for serializing invocations per passenger; under
// that lock a wallet check-then-debit is atomic.
type PaymentStrategy interface {
	ProcessPayment(ctx context.Context, amount float64) (bool, error)
	RefundPayment(ctx context.Context, amount float64) (bool, error)
}

// WalletPayment debits and credits a passenger's wallet balance.
type WalletPayment struct {
	passengers  repository.PassengerRepository
	passengerID string
}

// NewWalletPayment creates a wallet strategy for the given passenger.
func NewWalletPayment(passengers repository.PassengerRepository, passengerID string) *WalletPayment {
	return &WalletPayment{passengers: passengers, passengerID: passengerID}
}

// ProcessPayment debits the wallet iff the balance covers the amount.
// On a short balance it reports false and leaves the balance untouched.
func (p *WalletPayment) ProcessPayment(ctx context.Context, amount float64) (bool, error) {
	passenger, err := p.passengers.GetByID(ctx, p.passengerID)
	if err != nil {
		return false, err
	}

	if passenger.WalletBalance < amount {
		return false, nil
	}

	passenger.WalletBalance -= amount
	if err := p.passengers.Update(ctx, passenger); err != nil {
		return false, err
	}

	return true, nil
}

// RefundPayment credits the amount back to the wallet. Always succeeds.
func (p *WalletPayment) RefundPayment(ctx context.Context, amount float64) (bool, error) {
	passenger, err := p.passengers.GetByID(ctx, p.passengerID)
	if err != nil {
		return false, err
	}

	passenger.WalletBalance += amount
	if err := p.passengers.Update(ctx, passenger); err != nil {
		return false, err
	}

	return true, nil
}

// CreditCardPayment settles through the external card rail. A rail
// communication failure is a failed payment, never a propagated error.
type CreditCardPayment struct {
	processor     payment.CardProcessor
	rideID        string
	transactionID string
}

// NewCreditCardPayment creates a card strategy for the given ride.
func NewCreditCardPayment(processor payment.CardProcessor, rideID string) *CreditCardPayment {
	return &CreditCardPayment{processor: processor, rideID: rideID}
}

// ProcessPayment authorizes and captures the amount on the rail.
func (p *CreditCardPayment) ProcessPayment(ctx context.Context, amount float64) (bool, error) {
	txID, err := p.processor.Charge(ctx, amount, fmt.Sprintf("ride %s", p.rideID))
	if err != nil {
		log.Printf("card charge failed for ride %s: %v", p.rideID, err)
		return false, nil
	}

	p.transactionID = txID
	return true, nil
}

// RefundPayment issues a refund against the captured transaction.
func (p *CreditCardPayment) RefundPayment(ctx context.Context, amount float64) (bool, error) {
	if err := p.processor.Refund(ctx, p.transactionID, amount); err != nil {
		log.Printf("card refund failed for ride %s: %v", p.rideID, err)
		return false, nil
	}
	return true, nil
}

// TransactionID returns the rail transaction id of the last successful charge.
func (p *CreditCardPayment) TransactionID() string {
	return p.transactionID
}
