package tests

import (
	"errors"
	"fmt"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

var errInjected = errors.New("injected failure")

func newID(prefix string, i int) string {
	return fmt.Sprintf("%s-%d", prefix, i)
}

// rideFixture wires a RideService over in-memory mocks.
type rideFixture struct {
	rides      *MockRideRepository
	passengers *MockPassengerRepository
	drivers    *MockDriverRepository
	payments   *MockPaymentRepository
	geocoder   *MockGeocoder
	processor  *MockCardProcessor
	txRunner   *MockTxRunner
	locks      *service.Locks
	svc        *service.RideService
}

// newRideFixture builds the fixture with a geocoder reporting the given
// route distance.
func newRideFixture(distanceKm float64) *rideFixture {
	f := &rideFixture{
		rides:      NewMockRideRepository(),
		passengers: NewMockPassengerRepository(),
		drivers:    NewMockDriverRepository(),
		payments:   NewMockPaymentRepository(),
		geocoder:   NewMockGeocoder(distanceKm),
		processor:  NewMockCardProcessor(),
		locks:      service.NewLocks(),
	}
	f.txRunner = NewMockTxRunner(f.rides, f.passengers, f.drivers, f.payments)
	f.svc = service.NewRideService(
		f.txRunner,
		f.rides,
		f.passengers,
		f.drivers,
		f.payments,
		f.geocoder,
		service.NewSurgeService(f.rides),
		service.NewNotifier(),
		f.processor,
		nil,
		f.locks,
	)
	return f
}

func (f *rideFixture) addPassenger(id string, balance float64) {
	f.passengers.AddPassenger(&domain.Passenger{
		ID:            id,
		Name:          "Test Passenger",
		Email:         id + "@example.com",
		WalletBalance: balance,
	})
}

func (f *rideFixture) addDriver(id string) {
	f.drivers.AddDriver(&domain.Driver{
		ID:        id,
		Name:      "Test Driver",
		Email:     id + "@example.com",
		Available: true,
	})
}

// seedRide plants a ride directly in the repository, bypassing the request flow.
func (f *rideFixture) seedRide(ride *domain.Ride) *domain.Ride {
	if ride.RideType == "" {
		ride.RideType = domain.RideTypeStandard
	}
	if ride.PaymentMethod == "" {
		ride.PaymentMethod = domain.PaymentMethodWallet
	}
	if ride.SurgeMultiplier == 0 {
		ride.SurgeMultiplier = 1.0
	}
	f.rides.AddRide(ride)
	return ride
}
