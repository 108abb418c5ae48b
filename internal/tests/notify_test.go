package tests

import (
	"context"
	"sync"
	"testing"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// recordingObserver records the statuses it sees, in order.
type recordingObserver struct {
	mu       sync.Mutex
	name     string
	log      *[]string
	statuses []domain.RideStatus
}

func (o *recordingObserver) Update(ride *domain.Ride) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, ride.Status)
	if o.log != nil {
		*o.log = append(*o.log, o.name)
	}
}

// panickyObserver always panics on delivery.
type panickyObserver struct{}

func (panickyObserver) Update(*domain.Ride) {
	panic("observer blew up")
}

func TestNotifier_DeliversInRegistrationOrder(t *testing.T) {
	t.Parallel()

	var order []string
	first := &recordingObserver{name: "first", log: &order}
	second := &recordingObserver{name: "second", log: &order}

	notifier := service.NewNotifier(first)
	notifier.Register(second)

	notifier.Notify(&domain.Ride{ID: "ride-1", Status: domain.RideStatusRequested})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected delivery order [first second], got %v", order)
	}
}

func TestNotifier_PanickingObserverDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	tail := &recordingObserver{name: "tail"}
	notifier := service.NewNotifier(panickyObserver{}, tail)

	notifier.Notify(&domain.Ride{ID: "ride-1", Status: domain.RideStatusCompleted})

	if len(tail.statuses) != 1 {
		t.Errorf("expected the observer after the panic to still be notified, got %d deliveries", len(tail.statuses))
	}
}

func TestNotifier_RemoveStopsDelivery(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{name: "o"}
	notifier := service.NewNotifier(observer)
	notifier.Remove(observer)

	notifier.Notify(&domain.Ride{ID: "ride-1", Status: domain.RideStatusRequested})

	if len(observer.statuses) != 0 {
		t.Errorf("expected no deliveries after removal, got %d", len(observer.statuses))
	}
}

func TestLifecycle_ObserversSeeCommittedTransitions(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{name: "o"}

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 100)
	f.addDriver("driver-1")

	svc := service.NewRideService(
		f.txRunner, f.rides, f.passengers, f.drivers, f.payments,
		f.geocoder, service.NewSurgeService(f.rides),
		service.NewNotifier(observer), f.processor, nil, f.locks,
	)

	ride, err := svc.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID:     "passenger-1",
		PickupPostcode:  "SW1A 1AA",
		DropoffPostcode: "E1 6AN",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, err := svc.AcceptRide(context.Background(), ride.ID, "driver-1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := svc.StartRide(context.Background(), ride.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := svc.CompleteRide(context.Background(), ride.ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	want := []domain.RideStatus{
		domain.RideStatusRequested,
		domain.RideStatusAccepted,
		domain.RideStatusPickedUp,
		domain.RideStatusCompleted,
	}
	if len(observer.statuses) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(observer.statuses))
	}
	for i, status := range want {
		if observer.statuses[i] != status {
			t.Errorf("notification %d: expected %s, got %s", i, status, observer.statuses[i])
		}
	}
}
