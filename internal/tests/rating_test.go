package tests

import (
	"context"
	"errors"
	"testing"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

func TestRateRide_FoldsIntoDriverAverage(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.drivers.AddDriver(&domain.Driver{
		ID:         "driver-1",
		Rating:     4.0,
		TotalRides: 3,
	})
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", DriverID: "driver-1", Status: domain.RideStatusCompleted})

	ride, err := f.svc.RateRide(context.Background(), "ride-1", 5)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Rating != 5 {
		t.Errorf("expected ride rating 5, got %d", ride.Rating)
	}

	driver := f.drivers.GetDriver("driver-1")
	if !almostEqual(driver.Rating, 4.25) {
		t.Errorf("expected driver average 4.25, got %.4f", driver.Rating)
	}
	if driver.TotalRides != 4 {
		t.Errorf("expected 4 rated rides, got %d", driver.TotalRides)
	}
}

func TestRateRide_FirstRating(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addDriver("driver-1")
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", DriverID: "driver-1", Status: domain.RideStatusCompleted})

	if _, err := f.svc.RateRide(context.Background(), "ride-1", 3); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	driver := f.drivers.GetDriver("driver-1")
	if !almostEqual(driver.Rating, 3.0) {
		t.Errorf("expected driver average 3.0, got %.2f", driver.Rating)
	}
	if driver.TotalRides != 1 {
		t.Errorf("expected 1 rated ride, got %d", driver.TotalRides)
	}
}

func TestRateRide_RejectsOutOfRange(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: domain.RideStatusCompleted})

	for _, rating := range []int{0, -1, 6, 100} {
		if _, err := f.svc.RateRide(context.Background(), "ride-1", rating); !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got: %v", rating, err)
		}
	}
}

func TestRateRide_OnlyCompletedRides(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: domain.RideStatusPickedUp})

	_, err := f.svc.RateRide(context.Background(), "ride-1", 5)
	if !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got: %v", err)
	}
}

func TestRateRide_AtMostOnce(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addDriver("driver-1")
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", DriverID: "driver-1", Status: domain.RideStatusCompleted})

	if _, err := f.svc.RateRide(context.Background(), "ride-1", 4); err != nil {
		t.Fatalf("expected no error on first rating, got: %v", err)
	}

	_, err := f.svc.RateRide(context.Background(), "ride-1", 5)
	if !errors.Is(err, service.ErrRideAlreadyRated) {
		t.Fatalf("expected ErrRideAlreadyRated, got: %v", err)
	}

	if driver := f.drivers.GetDriver("driver-1"); driver.TotalRides != 1 {
		t.Errorf("expected the second rating to leave the average alone, got %d rated rides", driver.TotalRides)
	}
}
