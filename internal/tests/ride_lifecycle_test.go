package tests

import (
	"context"
	"errors"
	"testing"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

func TestRequestRide_StandardNoSurge(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 0)

	ride, err := f.svc.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID:     "passenger-1",
		PickupPostcode:  "SW1A 1AA",
		DropoffPostcode: "E1 6AN",
		RideType:        domain.RideTypeStandard,
		PaymentMethod:   domain.PaymentMethodWallet,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusRequested {
		t.Errorf("expected status REQUESTED, got %s", ride.Status)
	}
	if !almostEqual(ride.SurgeMultiplier, 1.0) {
		t.Errorf("expected surge 1.0, got %.2f", ride.SurgeMultiplier)
	}
	if !almostEqual(ride.Fare, 25.0) {
		t.Errorf("expected fare 25.00 for a 10 km standard ride, got %.2f", ride.Fare)
	}
	if ride.ID == "" {
		t.Error("expected ride ID to be set")
	}
	if ride.RequestedAt.IsZero() {
		t.Error("expected requested_at to be stamped")
	}
}

func TestRequestRide_LuxuryUnderSurge(t *testing.T) {
	t.Parallel()

	f := newRideFixture(20)
	f.addPassenger("passenger-1", 0)

	// Six active rides push the multiplier to 1.5x.
	for i := 0; i < 6; i++ {
		f.seedRide(&domain.Ride{ID: newID("active", i), Status: domain.RideStatusRequested})
	}

	ride, err := f.svc.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID:     "passenger-1",
		PickupPostcode:  "SW1A 1AA",
		DropoffPostcode: "E1 6AN",
		RideType:        domain.RideTypeLuxury,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !almostEqual(ride.SurgeMultiplier, 1.5) {
		t.Errorf("expected surge 1.5, got %.2f", ride.SurgeMultiplier)
	}
	if !almostEqual(ride.Fare, 15.0) {
		t.Errorf("expected fare 15.00 for a 20 km luxury ride at 1.5x, got %.2f", ride.Fare)
	}
}

func TestRequestRide_SurgeSnapshotSurvivesDemandDrop(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 0)

	active := make([]*domain.Ride, 0, 6)
	for i := 0; i < 6; i++ {
		active = append(active, f.seedRide(&domain.Ride{ID: newID("active", i), Status: domain.RideStatusRequested}))
	}

	ride, err := f.svc.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID:     "passenger-1",
		PickupPostcode:  "SW1A 1AA",
		DropoffPostcode: "E1 6AN",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Demand evaporates after the request; the snapshot must not move.
	for _, r := range active {
		r.Status = domain.RideStatusCancelled
		f.rides.AddRide(r)
	}

	stored, err := f.svc.GetRide(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !almostEqual(stored.SurgeMultiplier, 1.5) {
		t.Errorf("expected snapshotted surge 1.5, got %.2f", stored.SurgeMultiplier)
	}
}

func TestRequestRide_GeocodingFailureAbortsWithNothingPersisted(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 0)
	f.geocoder.GeocodeError = errInjected

	_, err := f.svc.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID:     "passenger-1",
		PickupPostcode:  "NOPE",
		DropoffPostcode: "E1 6AN",
	})
	if !errors.Is(err, service.ErrGeocodingFailed) {
		t.Fatalf("expected ErrGeocodingFailed, got: %v", err)
	}

	if f.rides.CreateCallCount != 0 {
		t.Error("expected no ride to be persisted after a geocoding failure")
	}
}

func TestRequestRide_DistanceFailureAbortsWithNothingPersisted(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 0)
	f.geocoder.DistanceError = errInjected

	_, err := f.svc.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID:     "passenger-1",
		PickupPostcode:  "SW1A 1AA",
		DropoffPostcode: "E1 6AN",
	})
	if !errors.Is(err, service.ErrGeocodingFailed) {
		t.Fatalf("expected ErrGeocodingFailed, got: %v", err)
	}

	if f.rides.CreateCallCount != 0 {
		t.Error("expected no ride to be persisted after a distance failure")
	}
}

func TestRequestRide_UnknownPassengerFails(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)

	_, err := f.svc.RequestRide(context.Background(), service.RequestRideInput{
		PassengerID:     "ghost",
		PickupPostcode:  "SW1A 1AA",
		DropoffPostcode: "E1 6AN",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestAcceptRide_AssignsDriverAndTakesThemOffline(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addDriver("driver-1")
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: domain.RideStatusRequested})

	ride, err := f.svc.AcceptRide(context.Background(), "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected status ACCEPTED, got %s", ride.Status)
	}
	if ride.DriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %q", ride.DriverID)
	}
	if f.drivers.GetDriver("driver-1").Available {
		t.Error("expected driver to be unavailable after accepting")
	}
}

func TestAcceptRide_OnlyFromRequested(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.RideStatus{
		domain.RideStatusAccepted,
		domain.RideStatusPickedUp,
		domain.RideStatusCompleted,
		domain.RideStatusCancelled,
	} {
		f := newRideFixture(10)
		f.addDriver("driver-1")
		f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: status})

		_, err := f.svc.AcceptRide(context.Background(), "ride-1", "driver-1")
		if !errors.Is(err, service.ErrInvalidStateTransition) {
			t.Errorf("status %s: expected ErrInvalidStateTransition, got: %v", status, err)
		}
	}
}

func TestStartRide_OnlyFromAccepted(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: domain.RideStatusRequested})

	_, err := f.svc.StartRide(context.Background(), "ride-1")
	if !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got: %v", err)
	}
}

func TestStartRide_StampsPickupTime(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", DriverID: "driver-1", Status: domain.RideStatusAccepted})

	ride, err := f.svc.StartRide(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusPickedUp {
		t.Errorf("expected status PICKED_UP, got %s", ride.Status)
	}
	if ride.PickedUpAt.IsZero() {
		t.Error("expected picked_up_at to be stamped")
	}
}

func TestCompleteRide_WalletSettlement(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 100)
	f.addDriver("driver-1")
	f.drivers.GetDriver("driver-1").Available = false
	f.seedRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.RideStatusPickedUp,
		DistanceKm:  10,
	})

	ride, err := f.svc.CompleteRide(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected status COMPLETED, got %s", ride.Status)
	}
	if ride.DroppedOffAt.IsZero() {
		t.Error("expected dropped_off_at to be stamped")
	}
	if !almostEqual(ride.Fare, 25.0) {
		t.Errorf("expected fare 25.00, got %.2f", ride.Fare)
	}
	if balance := f.passengers.GetPassenger("passenger-1").WalletBalance; !almostEqual(balance, 75.0) {
		t.Errorf("expected wallet balance 75.00, got %.2f", balance)
	}

	driver := f.drivers.GetDriver("driver-1")
	if !almostEqual(driver.Earnings, 25.0) {
		t.Errorf("expected driver earnings 25.00, got %.2f", driver.Earnings)
	}
	if !driver.Available {
		t.Error("expected driver to return to the available pool")
	}

	payment, err := f.payments.GetByRide(context.Background(), "ride-1")
	if err != nil || payment == nil {
		t.Fatalf("expected a payment record, got: %v, %v", payment, err)
	}
	if payment.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected payment COMPLETED, got %s", payment.Status)
	}
	if payment.TransactionID == "" {
		t.Error("expected a transaction id on the settled payment")
	}
}

func TestCompleteRide_InsufficientFundsLeavesRideAndWalletUntouched(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 10)
	f.seedRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.RideStatusPickedUp,
		DistanceKm:  10, // fare 25.00 against a 10.00 balance
	})

	_, err := f.svc.CompleteRide(context.Background(), "ride-1")
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got: %v", err)
	}

	if balance := f.passengers.GetPassenger("passenger-1").WalletBalance; !almostEqual(balance, 10.0) {
		t.Errorf("expected wallet balance unchanged at 10.00, got %.2f", balance)
	}
	if status := f.rides.GetRide("ride-1").Status; status != domain.RideStatusPickedUp {
		t.Errorf("expected ride to stay PICKED_UP, got %s", status)
	}
	if f.payments.CreateCallCount != 0 {
		t.Error("expected no payment record for a declined wallet debit")
	}
}

func TestCompleteRide_CardSettlement(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 0)
	f.addDriver("driver-1")
	f.seedRide(&domain.Ride{
		ID:            "ride-1",
		PassengerID:   "passenger-1",
		DriverID:      "driver-1",
		Status:        domain.RideStatusPickedUp,
		PaymentMethod: domain.PaymentMethodCreditCard,
		DistanceKm:    10,
	})

	ride, err := f.svc.CompleteRide(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected status COMPLETED, got %s", ride.Status)
	}
	if f.processor.ChargeCallCount != 1 {
		t.Errorf("expected one charge, got %d", f.processor.ChargeCallCount)
	}

	payment, _ := f.payments.GetByRide(context.Background(), "ride-1")
	if payment == nil || payment.TransactionID != "txn_mock" {
		t.Errorf("expected payment carrying the rail transaction id, got %+v", payment)
	}
}

func TestCompleteRide_CardRailFailureIsAFailedPayment(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 0)
	f.seedRide(&domain.Ride{
		ID:            "ride-1",
		PassengerID:   "passenger-1",
		DriverID:      "driver-1",
		Status:        domain.RideStatusPickedUp,
		PaymentMethod: domain.PaymentMethodCreditCard,
		DistanceKm:    10,
	})
	f.processor.ChargeError = errInjected

	_, err := f.svc.CompleteRide(context.Background(), "ride-1")
	if !errors.Is(err, service.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got: %v", err)
	}

	if status := f.rides.GetRide("ride-1").Status; status != domain.RideStatusPickedUp {
		t.Errorf("expected ride to stay PICKED_UP, got %s", status)
	}

	// The failed attempt is still recorded.
	payment, _ := f.payments.GetByRide(context.Background(), "ride-1")
	if payment == nil || payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected a FAILED payment record, got %+v", payment)
	}
}

func TestCompleteRide_PersistFailureRollsBackSettlement(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 100)
	f.addDriver("driver-1")
	f.seedRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.RideStatusPickedUp,
		DistanceKm:  10, // fare 25.00
	})
	f.rides.UpdateError = errInjected

	_, err := f.svc.CompleteRide(context.Background(), "ride-1")
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got: %v", err)
	}

	// The wallet debit and driver credit committed in the same transaction
	// as the status change, so the failed write undoes all of them.
	if balance := f.passengers.GetPassenger("passenger-1").WalletBalance; !almostEqual(balance, 100) {
		t.Errorf("expected wallet balance unchanged at 100.00, got %.2f", balance)
	}
	if status := f.rides.GetRide("ride-1").Status; status != domain.RideStatusPickedUp {
		t.Errorf("expected ride to stay PICKED_UP, got %s", status)
	}
	if payment, _ := f.payments.GetByRide(context.Background(), "ride-1"); payment != nil {
		t.Errorf("expected no payment record, got %+v", payment)
	}
	driver := f.drivers.GetDriver("driver-1")
	if driver.Earnings != 0 {
		t.Errorf("expected no driver earnings, got %.2f", driver.Earnings)
	}
}

func TestCompleteRide_OnlyFromPickedUp(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addPassenger("passenger-1", 100)
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: domain.RideStatusAccepted})

	_, err := f.svc.CompleteRide(context.Background(), "ride-1")
	if !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got: %v", err)
	}
}

func TestCancelRide_ByPassengerRequiresOwnership(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: domain.RideStatusRequested})

	_, err := f.svc.CancelRideByPassenger(context.Background(), "ride-1", "passenger-2")
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}

	if status := f.rides.GetRide("ride-1").Status; status != domain.RideStatusRequested {
		t.Errorf("expected ride to stay REQUESTED, got %s", status)
	}
}

func TestCancelRide_ByPassengerOnlyWhileRequested(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: domain.RideStatusAccepted})

	_, err := f.svc.CancelRideByPassenger(context.Background(), "ride-1", "passenger-1")
	if !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got: %v", err)
	}
}

func TestCancelRide_FreesAssignedDriver(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.addDriver("driver-1")
	f.drivers.GetDriver("driver-1").Available = false
	f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", DriverID: "driver-1", Status: domain.RideStatusAccepted})

	ride, err := f.svc.CancelRide(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusCancelled {
		t.Errorf("expected status CANCELLED, got %s", ride.Status)
	}
	if !f.drivers.GetDriver("driver-1").Available {
		t.Error("expected driver to be freed on cancellation")
	}
}

func TestCancelRide_TerminalAndInProgressRidesCannotBeCancelled(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.RideStatus{
		domain.RideStatusPickedUp,
		domain.RideStatusCompleted,
		domain.RideStatusCancelled,
	} {
		f := newRideFixture(10)
		f.seedRide(&domain.Ride{ID: "ride-1", PassengerID: "passenger-1", Status: status})

		_, err := f.svc.CancelRide(context.Background(), "ride-1")
		if !errors.Is(err, service.ErrInvalidStateTransition) {
			t.Errorf("status %s: expected ErrInvalidStateTransition, got: %v", status, err)
		}
	}
}

func TestGetActiveRides_ExcludesTerminal(t *testing.T) {
	t.Parallel()

	f := newRideFixture(10)
	f.seedRide(&domain.Ride{ID: "r1", Status: domain.RideStatusRequested})
	f.seedRide(&domain.Ride{ID: "r2", Status: domain.RideStatusAccepted})
	f.seedRide(&domain.Ride{ID: "r3", Status: domain.RideStatusPickedUp})
	f.seedRide(&domain.Ride{ID: "r4", Status: domain.RideStatusCompleted})
	f.seedRide(&domain.Ride{ID: "r5", Status: domain.RideStatusCancelled})

	active, err := f.svc.GetActiveRides(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(active) != 3 {
		t.Errorf("expected 3 active rides, got %d", len(active))
	}
	for _, r := range active {
		if r.Status.IsTerminal() {
			t.Errorf("terminal ride %s in active set", r.ID)
		}
	}
}
