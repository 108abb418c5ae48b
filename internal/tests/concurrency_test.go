package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// slowPassengerRepository widens the read-modify-write window on wallet
// reads so lost updates between concurrent writers do not slip through by
// timing luck.
type slowPassengerRepository struct {
	*MockPassengerRepository
}

func (r *slowPassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	p, err := r.MockPassengerRepository.GetByID(ctx, id)
	time.Sleep(10 * time.Millisecond)
	return p, err
}

func TestCompleteRide_ConcurrentAttemptsSettleExactlyOnce(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 1000)
	f.addDriver("driver-1")
	f.seedRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.RideStatusPickedUp,
		DistanceKm:  10,
	})

	const attempts = 16

	var wg sync.WaitGroup
	var succeeded, conflicted int32

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CompleteRide(context.Background(), "ride-1")
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, service.ErrInvalidStateTransition):
				atomic.AddInt32(&conflicted, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one completion, got %d", succeeded)
	}
	if conflicted != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicted)
	}

	// The fare was debited exactly once.
	if balance := f.passengers.GetPassenger("passenger-1").WalletBalance; !almostEqual(balance, 975) {
		t.Errorf("expected wallet balance 975.00, got %.2f", balance)
	}
	if f.payments.CreateCallCount != 1 {
		t.Errorf("expected one payment record, got %d", f.payments.CreateCallCount)
	}
}

func TestTopUpWallet_ConcurrentTopUpsAllLand(t *testing.T) {
	t.Parallel()

	passengers := NewMockPassengerRepository()
	passengers.AddPassenger(&domain.Passenger{ID: "p1"})
	svc := service.NewUserService(passengers, NewMockDriverRepository(), service.NewLocks())

	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.TopUpWallet(context.Background(), "p1", 5); err != nil {
				t.Errorf("top-up failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if balance := passengers.GetPassenger("p1").WalletBalance; !almostEqual(balance, workers*5) {
		t.Errorf("expected balance %.2f, got %.2f", float64(workers*5), balance)
	}
}

func TestTopUpWallet_SerializesWithFareSettlement(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 1000)
	f.addDriver("driver-1")
	f.seedRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.RideStatusPickedUp,
		DistanceKm:  10, // fare 25.00
	})

	// The wallet services share one lock set; a top-up through UserService
	// must not interleave with the settlement debit.
	slow := &slowPassengerRepository{f.passengers}
	f.txRunner.Stores.Passengers = slow
	users := service.NewUserService(slow, f.drivers, f.locks)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := f.svc.CompleteRide(context.Background(), "ride-1"); err != nil {
			t.Errorf("complete failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := users.TopUpWallet(context.Background(), "passenger-1", 50); err != nil {
			t.Errorf("top-up failed: %v", err)
		}
	}()
	wg.Wait()

	// 1000 - 25 fare + 50 top-up lands regardless of interleaving.
	if balance := f.passengers.GetPassenger("passenger-1").WalletBalance; !almostEqual(balance, 1025) {
		t.Errorf("expected wallet balance 1025.00, got %.2f", balance)
	}
}

func TestAcceptRide_ConcurrentDriversGetOneWinner(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: domain.RideStatusRequested})

	const drivers = 8
	for i := 0; i < drivers; i++ {
		f.addDriver(newID("driver", i))
	}

	var wg sync.WaitGroup
	var accepted int32

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.AcceptRide(context.Background(), "ride-1", newID("driver", i))
			if err == nil {
				atomic.AddInt32(&accepted, 1)
			} else if !errors.Is(err, service.ErrInvalidStateTransition) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if accepted != 1 {
		t.Errorf("expected exactly one driver to win the ride, got %d", accepted)
	}
}
