package service

import (
	"context"

	"rideshare/internal/domain"
	"rideshare/internal/payment"
	"rideshare/internal/repository"
)

// PaymentService handles settlement lookups and refunds after the lifecycle
// engine has recorded a payment.
type PaymentService struct {
	paymentRepo   repository.PaymentRepository
	passengerRepo repository.PassengerRepository
	rideRepo      repository.RideRepository
	cardProcessor payment.CardProcessor
	locks         *Locks
}

// NewPaymentService creates a new PaymentService. locks must be the same
// set the lifecycle engine uses, so wallet refunds contend with settlement
// debits and top-ups.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	passengerRepo repository.PassengerRepository,
	rideRepo repository.RideRepository,
	cardProcessor payment.CardProcessor,
	locks *Locks,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		passengerRepo: passengerRepo,
		rideRepo:      rideRepo,
		cardProcessor: cardProcessor,
		locks:         locks,
	}
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	return s.paymentRepo.GetByID(ctx, paymentID)
}

// GetRidePayment retrieves the payment recorded for a ride, or nil when the
// ride has not settled.
func (s *PaymentService) GetRidePayment(ctx context.Context, rideID string) (*domain.Payment, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.paymentRepo.GetByRide(ctx, rideID)
}

// GetPassengerPayments retrieves all payments made by a passenger.
func (s *PaymentService) GetPassengerPayments(ctx context.Context, passengerID string) ([]*domain.Payment, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	return s.paymentRepo.GetByPassenger(ctx, passengerID)
}

// RefundPayment reverses a COMPLETED payment back onto the rail it was taken
// from: wallet refunds credit the passenger's balance, card refunds go
// through the card processor.
func (s *PaymentService) RefundPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	record, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if record.Status != domain.PaymentStatusCompleted {
		return nil, ErrPaymentNotRefundable
	}

	ride, err := s.rideRepo.GetByID(ctx, record.RideID)
	if err != nil {
		return nil, err
	}

	switch record.Type {
	case domain.PaymentMethodCreditCard:
		strategy := &CreditCardPayment{processor: s.cardProcessor, rideID: ride.ID, transactionID: record.TransactionID}
		ok, err := strategy.RefundPayment(ctx, record.Amount)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPaymentFailed
		}

	default:
		s.locks.wallets.get(ride.PassengerID).Lock()
		strategy := NewWalletPayment(s.passengerRepo, ride.PassengerID)
		_, err := strategy.RefundPayment(ctx, record.Amount)
		s.locks.wallets.get(ride.PassengerID).Unlock()
		if err != nil {
			return nil, err
		}
	}

	if err := s.paymentRepo.UpdateStatus(ctx, record.ID, domain.PaymentStatusRefunded); err != nil {
		return nil, err
	}

	record.Status = domain.PaymentStatusRefunded
	return record, nil
}
