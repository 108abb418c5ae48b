package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

type paymentFixture struct {
	rides      *MockRideRepository
	passengers *MockPassengerRepository
	payments   *MockPaymentRepository
	processor  *MockCardProcessor
	svc        *service.PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		rides:      NewMockRideRepository(),
		passengers: NewMockPassengerRepository(),
		payments:   NewMockPaymentRepository(),
		processor:  NewMockCardProcessor(),
	}
	f.svc = service.NewPaymentService(f.payments, f.passengers, f.rides, f.processor, service.NewLocks())
	return f
}

func (f *paymentFixture) seedPayment(p *domain.Payment) *domain.Payment {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_ = f.payments.Create(context.Background(), p)
	f.payments.CreateCallCount = 0
	return p
}

func TestRefundPayment_WalletCreditsBalance(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.passengers.AddPassenger(&domain.Passenger{ID: "p1", WalletBalance: 5})
	f.rides.AddRide(&domain.Ride{ID: "ride-1", PassengerID: "p1", Status: domain.RideStatusCompleted})
	f.seedPayment(&domain.Payment{
		ID:     "pay-1",
		RideID: "ride-1",
		Amount: 25,
		Type:   domain.PaymentMethodWallet,
		Status: domain.PaymentStatusCompleted,
	})

	refunded, err := f.svc.RefundPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if refunded.Status != domain.PaymentStatusRefunded {
		t.Errorf("expected status REFUNDED, got %s", refunded.Status)
	}
	if balance := f.passengers.GetPassenger("p1").WalletBalance; !almostEqual(balance, 30) {
		t.Errorf("expected wallet balance 30.00 after refund, got %.2f", balance)
	}

	stored, _ := f.payments.GetByID(context.Background(), "pay-1")
	if stored.Status != domain.PaymentStatusRefunded {
		t.Errorf("expected stored payment REFUNDED, got %s", stored.Status)
	}
}

func TestRefundPayment_CardGoesThroughTheRail(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.rides.AddRide(&domain.Ride{ID: "ride-1", PassengerID: "p1", Status: domain.RideStatusCompleted})
	f.seedPayment(&domain.Payment{
		ID:            "pay-1",
		RideID:        "ride-1",
		Amount:        25,
		Type:          domain.PaymentMethodCreditCard,
		Status:        domain.PaymentStatusCompleted,
		TransactionID: "txn_abc",
	})

	if _, err := f.svc.RefundPayment(context.Background(), "pay-1"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if f.processor.RefundCallCount != 1 {
		t.Errorf("expected one rail refund, got %d", f.processor.RefundCallCount)
	}
}

func TestRefundPayment_OnlyCompletedPaymentsAreRefundable(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.PaymentStatus{
		domain.PaymentStatusPending,
		domain.PaymentStatusFailed,
		domain.PaymentStatusRefunded,
	} {
		f := newPaymentFixture()
		f.rides.AddRide(&domain.Ride{ID: "ride-1", PassengerID: "p1"})
		f.seedPayment(&domain.Payment{ID: "pay-1", RideID: "ride-1", Amount: 25, Type: domain.PaymentMethodWallet, Status: status})

		_, err := f.svc.RefundPayment(context.Background(), "pay-1")
		if !errors.Is(err, service.ErrPaymentNotRefundable) {
			t.Errorf("status %s: expected ErrPaymentNotRefundable, got: %v", status, err)
		}
	}
}

func TestGetRidePayment_NilWhenUnsettled(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	payment, err := f.svc.GetRidePayment(context.Background(), "ride-without-payment")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if payment != nil {
		t.Errorf("expected nil payment for an unsettled ride, got %+v", payment)
	}
}
