package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/payment"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
)

const rideLockTTL = 30 * time.Second

// Geocoder resolves postcodes to coordinates and computes route distances.
// This interface allows for testing with mock implementations.
type Geocoder interface {
	Geocode(ctx context.Context, postcode string) (domain.Location, error)
	RouteDistanceKm(ctx context.Context, origin, dest domain.Location) (float64, error)
}

// RideService is the ride lifecycle engine. It owns every state transition,
// prices rides through the fare strategies, settles fares through the payment
// strategies, and fans each committed transition out to the notifier.
//
// Operations on the same ride serialize on the shared per-ride lock; wallet
// mutations and driver flips take the shared per-passenger and per-driver
// locks. Multi-entity writes run in one database transaction through the
// injected transaction runner.
type RideService struct {
	txRunner      TxRunner
	rideRepo      repository.RideRepository
	passengerRepo repository.PassengerRepository
	driverRepo    repository.DriverRepository
	paymentRepo   repository.PaymentRepository
	geocoder      Geocoder
	surgeService  *SurgeService
	notifier      *Notifier
	cardProcessor payment.CardProcessor
	lockStore     redis.LockStoreInterface // optional cross-instance guard
	locks         *Locks
}

// NewRideService creates a new RideService. txRunner carries every
// multi-entity write set; locks must be the process-wide set shared with the
// other services.
func NewRideService(
	txRunner TxRunner,
	rideRepo repository.RideRepository,
	passengerRepo repository.PassengerRepository,
	driverRepo repository.DriverRepository,
	paymentRepo repository.PaymentRepository,
	geocoder Geocoder,
	surgeService *SurgeService,
	notifier *Notifier,
	cardProcessor payment.CardProcessor,
	lockStore redis.LockStoreInterface,
	locks *Locks,
) *RideService {
	return &RideService{
		txRunner:      txRunner,
		rideRepo:      rideRepo,
		passengerRepo: passengerRepo,
		driverRepo:    driverRepo,
		paymentRepo:   paymentRepo,
		geocoder:      geocoder,
		surgeService:  surgeService,
		notifier:      notifier,
		cardProcessor: cardProcessor,
		lockStore:     lockStore,
		locks:         locks,
	}
}

// RequestRideInput contains the parameters for requesting a ride.
// Pickup and dropoff are given as postcodes; the optional addresses override
// the formatted address returned by the geocoder.
type RequestRideInput struct {
	PassengerID     string
	PickupPostcode  string
	PickupAddress   string
	DropoffPostcode string
	DropoffAddress  string
	RideType        domain.RideType
	PaymentMethod   domain.PaymentMethod
}

// RequestRide creates a new ride in the REQUESTED state: it resolves both
// locations, computes the route distance, snapshots the surge multiplier,
// prices the fare, persists, and notifies. A provider failure aborts the
// request with nothing persisted.
func (s *RideService) RequestRide(ctx context.Context, in RequestRideInput) (*domain.Ride, error) {
	if in.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	// The passenger must exist before we spend provider calls.
	if _, err := s.passengerRepo.GetByID(ctx, in.PassengerID); err != nil {
		return nil, err
	}

	pickup, err := s.geocoder.Geocode(ctx, in.PickupPostcode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	dropoff, err := s.geocoder.Geocode(ctx, in.DropoffPostcode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}

	if in.PickupAddress != "" {
		pickup.Address = in.PickupAddress
	}
	if in.DropoffAddress != "" {
		dropoff.Address = in.DropoffAddress
	}

	distance, err := s.geocoder.RouteDistanceKm(ctx, pickup, dropoff)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}

	ride := &domain.Ride{
		ID:              uuid.New().String(),
		PassengerID:     in.PassengerID,
		Pickup:          pickup,
		Dropoff:         dropoff,
		Status:          domain.RideStatusRequested,
		RideType:        in.RideType,
		PaymentMethod:   in.PaymentMethod,
		DistanceKm:      distance,
		SurgeMultiplier: s.surgeService.Multiplier(ctx),
		RequestedAt:     time.Now(),
	}
	ride.Fare = FareStrategyFor(ride.RideType).CalculateFare(ride)

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	log.Printf("ride %s requested: %.1f km, surge %.2fx, fare %.2f", ride.ID, ride.DistanceKm, ride.SurgeMultiplier, ride.Fare)

	s.notifier.Notify(ride)
	return ride, nil
}

// AcceptRide assigns a driver to a REQUESTED ride. Acceptance is
// driver-initiated; the driver leaves the available pool on success. The
// driver flip and the ride update commit together.
func (s *RideService) AcceptRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	unlock, err := s.lockRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusRequested {
		return nil, ErrInvalidStateTransition
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	ride.DriverID = driverID
	ride.Status = domain.RideStatusAccepted

	err = s.txRunner.InTx(ctx, func(st Stores) error {
		s.locks.drivers.get(driverID).Lock()
		defer s.locks.drivers.get(driverID).Unlock()

		driver, err := st.Drivers.GetByID(ctx, driverID)
		if err != nil {
			return err
		}
		driver.Available = false
		if err := st.Drivers.Update(ctx, driver); err != nil {
			return err
		}

		return st.Rides.Update(ctx, ride)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ride)
	return ride, nil
}

// StartRide marks an ACCEPTED ride as picked up and stamps the pickup time.
func (s *RideService) StartRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	unlock, err := s.lockRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusAccepted {
		return nil, ErrInvalidStateTransition
	}

	ride.Status = domain.RideStatusPickedUp
	ride.PickedUpAt = time.Now()

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.notifier.Notify(ride)
	return ride, nil
}

// CompleteRide finishes a PICKED_UP ride: it stamps the dropoff time,
// re-prices the fare, settles payment, credits the driver's earnings, frees
// the driver, persists, and notifies. The wallet debit, payment record,
// driver credit, and status change commit in one transaction, so a declined
// or interrupted settlement leaves the ride in PICKED_UP with the wallet
// untouched. The card rail is external and cannot join the transaction; it
// is charged first, and the audit record commits with the rest.
func (s *RideService) CompleteRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	unlock, err := s.lockRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusPickedUp {
		return nil, ErrInvalidStateTransition
	}

	ride.DroppedOffAt = time.Now()
	ride.Fare = FareStrategyFor(ride.RideType).CalculateFare(ride)

	record := &domain.Payment{
		ID:        uuid.New().String(),
		RideID:    ride.ID,
		Amount:    ride.Fare,
		Type:      ride.PaymentMethod,
		Status:    domain.PaymentStatusPending,
		CreatedAt: time.Now(),
	}

	// The card rail is charged outside the transaction: it is an external
	// call that cannot be rolled back.
	if ride.PaymentMethod == domain.PaymentMethodCreditCard {
		strategy := NewCreditCardPayment(s.cardProcessor, ride.ID)
		ok, err := strategy.ProcessPayment(ctx, ride.Fare)
		if err != nil {
			return nil, err
		}
		if !ok {
			// The failed attempt is still recorded before the error surfaces.
			record.Status = domain.PaymentStatusFailed
			if err := s.paymentRepo.Create(ctx, record); err != nil {
				return nil, err
			}
			return nil, ErrPaymentFailed
		}
		record.TransactionID = strategy.TransactionID()
	}

	err = s.txRunner.InTx(ctx, func(st Stores) error {
		if ride.PaymentMethod != domain.PaymentMethodCreditCard {
			s.locks.wallets.get(ride.PassengerID).Lock()
			defer s.locks.wallets.get(ride.PassengerID).Unlock()

			ok, err := NewWalletPayment(st.Passengers, ride.PassengerID).ProcessPayment(ctx, ride.Fare)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientFunds
			}
			record.TransactionID = uuid.New().String()
		}

		record.Status = domain.PaymentStatusCompleted
		if err := st.Payments.Create(ctx, record); err != nil {
			return err
		}

		if ride.DriverID != "" {
			s.locks.drivers.get(ride.DriverID).Lock()
			defer s.locks.drivers.get(ride.DriverID).Unlock()

			driver, err := st.Drivers.GetByID(ctx, ride.DriverID)
			if err != nil {
				return err
			}
			driver.Earnings += ride.Fare
			driver.Available = true
			if err := st.Drivers.Update(ctx, driver); err != nil {
				return err
			}
		}

		ride.Status = domain.RideStatusCompleted
		return st.Rides.Update(ctx, ride)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("ride %s completed: fare %.2f settled via %s", ride.ID, ride.Fare, ride.PaymentMethod)

	s.notifier.Notify(ride)
	return ride, nil
}

// CancelRide cancels a ride on behalf of an operator. Only REQUESTED and
// ACCEPTED rides can be cancelled; an assigned driver is freed.
func (s *RideService) CancelRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	unlock, err := s.lockRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusRequested && ride.Status != domain.RideStatusAccepted {
		return nil, ErrInvalidStateTransition
	}

	return s.cancel(ctx, ride)
}

// CancelRideByPassenger cancels a ride on behalf of its passenger. The ride
// must belong to the passenger and must still be REQUESTED.
func (s *RideService) CancelRideByPassenger(ctx context.Context, rideID, passengerID string) (*domain.Ride, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	unlock, err := s.lockRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.PassengerID != passengerID {
		return nil, ErrUnauthorized
	}

	if ride.Status != domain.RideStatusRequested {
		return nil, ErrInvalidStateTransition
	}

	return s.cancel(ctx, ride)
}

// cancel frees the assigned driver, if any, and marks the ride CANCELLED,
// committing both writes together.
func (s *RideService) cancel(ctx context.Context, ride *domain.Ride) (*domain.Ride, error) {
	ride.Status = domain.RideStatusCancelled

	err := s.txRunner.InTx(ctx, func(st Stores) error {
		if ride.DriverID != "" {
			s.locks.drivers.get(ride.DriverID).Lock()
			defer s.locks.drivers.get(ride.DriverID).Unlock()

			driver, err := st.Drivers.GetByID(ctx, ride.DriverID)
			if err != nil {
				return err
			}
			driver.Available = true
			if err := st.Drivers.Update(ctx, driver); err != nil {
				return err
			}
		}

		return st.Rides.Update(ctx, ride)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ride)
	return ride, nil
}

// RateRide stores a 1..5 rating on a completed ride, at most once, and folds
// it into the driver's running average.
func (s *RideService) RateRide(ctx context.Context, rideID string, rating int) (*domain.Ride, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	unlock, err := s.lockRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusCompleted {
		return nil, ErrInvalidStateTransition
	}

	if ride.Rating != 0 {
		return nil, ErrRideAlreadyRated
	}

	ride.Rating = rating

	err = s.txRunner.InTx(ctx, func(st Stores) error {
		if err := st.Rides.Update(ctx, ride); err != nil {
			return err
		}

		if ride.DriverID == "" {
			return nil
		}

		s.locks.drivers.get(ride.DriverID).Lock()
		defer s.locks.drivers.get(ride.DriverID).Unlock()

		driver, err := st.Drivers.GetByID(ctx, ride.DriverID)
		if err != nil {
			return err
		}

		// Running average: (oldAvg*oldCount + rating) / (oldCount+1).
		driver.Rating = (driver.Rating*float64(driver.TotalRides) + float64(rating)) / float64(driver.TotalRides+1)
		driver.TotalRides++

		return st.Drivers.Update(ctx, driver)
	})
	if err != nil {
		return nil, err
	}

	return ride, nil
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

// GetActiveRides retrieves all rides in a non-terminal status.
func (s *RideService) GetActiveRides(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.GetActive(ctx)
}

// GetPassengerRides retrieves all rides requested by the given passenger.
func (s *RideService) GetPassengerRides(ctx context.Context, passengerID string) ([]*domain.Ride, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	return s.rideRepo.GetByPassenger(ctx, passengerID)
}

// GetDriverRides retrieves all rides served by the given driver.
func (s *RideService) GetDriverRides(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.rideRepo.GetByDriver(ctx, driverID)
}

// lockRide serializes lifecycle operations on a single ride. The in-process
// mutex covers this instance; when a lock store is configured, a redis lock
// additionally guards against a second instance working the same ride.
func (s *RideService) lockRide(ctx context.Context, rideID string) (func(), error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	mu := s.locks.rides.get(rideID)
	mu.Lock()

	if s.lockStore == nil {
		return mu.Unlock, nil
	}

	locked, err := s.lockStore.AcquireRideLock(ctx, rideID, rideLockTTL)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	if !locked {
		mu.Unlock()
		return nil, ErrInvalidStateTransition
	}

	return func() {
		_ = s.lockStore.ReleaseRideLock(ctx, rideID)
		mu.Unlock()
	}, nil
}
