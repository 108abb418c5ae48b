package service

import (
	"log"
	"sync"

	"rideshare/internal/domain"
)

// RideObserver reacts to a ride state change. Implementations inspect the
// ride's status and act only on the subset they care about; they must not
// fail the transition that triggered them.
type RideObserver interface {
	Update(ride *domain.Ride)
}

// Notifier fans a ride state change out to registered observers in
// registration order. Delivery is best-effort: the transition has already
// been committed by the time observers run.
type Notifier struct {
	mu        sync.Mutex
	observers []RideObserver
}

// NewNotifier creates a Notifier with the given initial observers.
func NewNotifier(observers ...RideObserver) *Notifier {
	return &Notifier{observers: observers}
}

// Register appends an observer to the delivery list.
func (n *Notifier) Register(observer RideObserver) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, observer)
}

// Remove deletes an observer from the delivery list.
func (n *Notifier) Remove(observer RideObserver) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, o := range n.observers {
		if o == observer {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

// Notify delivers the ride, in its new state, to every observer in order.
// A panicking observer is absorbed so it cannot take down the caller.
func (n *Notifier) Notify(ride *domain.Ride) {
	n.mu.Lock()
	observers := make([]RideObserver, len(n.observers))
	copy(observers, n.observers)
	n.mu.Unlock()

	for _, o := range observers {
		deliver(o, ride)
	}
}

func deliver(o RideObserver, ride *domain.Ride) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("observer panic for ride %s: %v", ride.ID, r)
		}
	}()
	o.Update(ride)
}

// PassengerNotifier sends passenger-facing messages for the transitions a
// passenger cares about: acceptance, pickup, and completion.
type PassengerNotifier struct{}

func (PassengerNotifier) Update(ride *domain.Ride) {
	switch ride.Status {
	case domain.RideStatusAccepted:
		log.Printf("[NOTIFY passenger=%s] Your ride has been accepted by driver %s", ride.PassengerID, ride.DriverID)
	case domain.RideStatusPickedUp:
		log.Printf("[NOTIFY passenger=%s] Your ride has started", ride.PassengerID)
	case domain.RideStatusCompleted:
		log.Printf("[NOTIFY passenger=%s] Your ride has completed. Fare: %.2f", ride.PassengerID, ride.Fare)
	}
}

// DriverNotifier sends driver-facing messages: new requests go to nearby
// drivers, completions to the assigned driver.
type DriverNotifier struct{}

func (DriverNotifier) Update(ride *domain.Ride) {
	switch ride.Status {
	case domain.RideStatusRequested:
		log.Printf("[NOTIFY drivers] New ride request from %s", ride.Pickup.Address)
	case domain.RideStatusCompleted:
		log.Printf("[NOTIFY driver=%s] Ride completed. Earnings: %.2f", ride.DriverID, ride.Fare)
	}
}
