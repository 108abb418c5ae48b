package tests

import (
	"context"
	"sync"
	"sync/atomic"

	"rideshare/internal/domain"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError      error
	UpdateError      error
	CountActiveError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.Status == status {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) GetActive(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if !r.Status.IsTerminal() {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) GetByPassenger(ctx context.Context, passengerID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.PassengerID == passengerID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) GetByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.DriverID == driverID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) CountActive(ctx context.Context) (int, error) {
	if m.CountActiveError != nil {
		return 0, m.CountActiveError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.rides {
		if !r.Status.IsTerminal() {
			count++
		}
	}
	return count, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

// GetRide returns the stored ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) snapshot() map[string]*domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.Ride, len(m.rides))
	for id, r := range m.rides {
		copy := *r
		snap[id] = &copy
	}
	return snap
}

func (m *MockRideRepository) restore(snap map[string]*domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides = snap
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Email == email {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAvailable(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Driver
	for _, d := range m.drivers {
		if d.Available {
			copy := *d
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockDriverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[driver.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

// GetDriver returns the stored driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

func (m *MockDriverRepository) snapshot() map[string]*domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.Driver, len(m.drivers))
	for id, d := range m.drivers {
		copy := *d
		snap[id] = &copy
	}
	return snap
}

func (m *MockDriverRepository) restore(snap map[string]*domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers = snap
}

// ──────────────────────────────────────────────
// MOCK PASSENGER REPOSITORY
// ──────────────────────────────────────────────

// MockPassengerRepository is a mock implementation of PassengerRepository.
type MockPassengerRepository struct {
	mu         sync.RWMutex
	passengers map[string]*domain.Passenger

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockPassengerRepository creates a new mock passenger repository.
func NewMockPassengerRepository() *MockPassengerRepository {
	return &MockPassengerRepository{
		passengers: make(map[string]*domain.Passenger),
	}
}

// AddPassenger adds a passenger to the mock repository.
func (m *MockPassengerRepository) AddPassenger(passenger *domain.Passenger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[passenger.ID] = passenger
}

func (m *MockPassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[passenger.ID] = passenger
	return nil
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	passenger, ok := m.passengers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *passenger
	return &copy, nil
}

func (m *MockPassengerRepository) GetByEmail(ctx context.Context, email string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.passengers {
		if p.Email == email {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPassengerRepository) Update(ctx context.Context, passenger *domain.Passenger) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.passengers[passenger.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *passenger
	m.passengers[passenger.ID] = &copy
	return nil
}

// GetPassenger returns the stored passenger for test assertions.
func (m *MockPassengerRepository) GetPassenger(id string) *domain.Passenger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.passengers[id]
}

func (m *MockPassengerRepository) snapshot() map[string]*domain.Passenger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.Passenger, len(m.passengers))
	for id, p := range m.passengers {
		copy := *p
		snap[id] = &copy
	}
	return snap
}

func (m *MockPassengerRepository) restore(snap map[string]*domain.Passenger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers = snap
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetByRide(ctx context.Context, rideID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.RideID == rideID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) GetByPassenger(ctx context.Context, passengerID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		copy := *p
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	return nil
}

func (m *MockPaymentRepository) snapshot() map[string]*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.Payment, len(m.payments))
	for id, p := range m.payments {
		copy := *p
		snap[id] = &copy
	}
	return snap
}

func (m *MockPaymentRepository) restore(snap map[string]*domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = snap
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner applies transactional write sets to the in-memory mocks. It
// snapshots the four stores before running the set and restores them when it
// fails, so a failed set leaves no partial writes behind.
type MockTxRunner struct {
	rides      *MockRideRepository
	passengers *MockPassengerRepository
	drivers    *MockDriverRepository
	payments   *MockPaymentRepository

	// Stores is handed to each write set. Individual fields may be replaced
	// to wrap a store with test behaviour inside the transaction.
	Stores service.Stores

	// Error injection
	BeginError error
}

// NewMockTxRunner creates a transaction runner over the given mocks.
func NewMockTxRunner(
	rides *MockRideRepository,
	passengers *MockPassengerRepository,
	drivers *MockDriverRepository,
	payments *MockPaymentRepository,
) *MockTxRunner {
	return &MockTxRunner{
		rides:      rides,
		passengers: passengers,
		drivers:    drivers,
		payments:   payments,
		Stores: service.Stores{
			Rides:      rides,
			Passengers: passengers,
			Drivers:    drivers,
			Payments:   payments,
		},
	}
}

func (m *MockTxRunner) InTx(ctx context.Context, fn func(st service.Stores) error) error {
	if m.BeginError != nil {
		return m.BeginError
	}
	ridesSnap := m.rides.snapshot()
	passengersSnap := m.passengers.snapshot()
	driversSnap := m.drivers.snapshot()
	paymentsSnap := m.payments.snapshot()
	if err := fn(m.Stores); err != nil {
		m.rides.restore(ridesSnap)
		m.passengers.restore(passengersSnap)
		m.drivers.restore(driversSnap)
		m.payments.restore(paymentsSnap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK GEOCODER
// ──────────────────────────────────────────────

// MockGeocoder resolves postcodes from a fixed table and returns a fixed
// route distance.
type MockGeocoder struct {
	Locations  map[string]domain.Location
	DistanceKm float64

	// Error injection
	GeocodeError  error
	DistanceError error
}

// NewMockGeocoder creates a mock geocoder returning the given distance.
func NewMockGeocoder(distanceKm float64) *MockGeocoder {
	return &MockGeocoder{
		Locations:  make(map[string]domain.Location),
		DistanceKm: distanceKm,
	}
}

func (m *MockGeocoder) Geocode(ctx context.Context, postcode string) (domain.Location, error) {
	if m.GeocodeError != nil {
		return domain.Location{}, m.GeocodeError
	}
	if loc, ok := m.Locations[postcode]; ok {
		return loc, nil
	}
	return domain.Location{Address: postcode, Postcode: postcode}, nil
}

func (m *MockGeocoder) RouteDistanceKm(ctx context.Context, origin, dest domain.Location) (float64, error) {
	if m.DistanceError != nil {
		return 0, m.DistanceError
	}
	return m.DistanceKm, nil
}

// ──────────────────────────────────────────────
// MOCK CARD PROCESSOR
// ──────────────────────────────────────────────

// MockCardProcessor is a mock implementation of the external card rail.
type MockCardProcessor struct {
	mu sync.Mutex

	ChargeCallCount int32
	RefundCallCount int32
	ChargedAmounts  []float64

	// Error injection
	ChargeError error
	RefundError error
}

// NewMockCardProcessor creates a new mock card processor.
func NewMockCardProcessor() *MockCardProcessor {
	return &MockCardProcessor{}
}

func (m *MockCardProcessor) Charge(ctx context.Context, amount float64, description string) (string, error) {
	atomic.AddInt32(&m.ChargeCallCount, 1)
	if m.ChargeError != nil {
		return "", m.ChargeError
	}
	m.mu.Lock()
	m.ChargedAmounts = append(m.ChargedAmounts, amount)
	m.mu.Unlock()
	return "txn_mock", nil
}

func (m *MockCardProcessor) Refund(ctx context.Context, transactionID string, amount float64) error {
	atomic.AddInt32(&m.RefundCallCount, 1)
	return m.RefundError
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is an in-memory implementation of the driver position index.
type MockLocationStore struct {
	mu        sync.RWMutex
	positions map[string]redis.DriverPosition

	// Error injection
	FindNearbyError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		positions: make(map[string]redis.DriverPosition),
	}
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[driverID] = redis.DriverPosition{DriverID: driverID, Lat: lat, Lng: lng}
	return nil
}

func (m *MockLocationStore) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverPosition, error) {
	if m.FindNearbyError != nil {
		return nil, m.FindNearbyError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]redis.DriverPosition, 0, len(m.positions))
	for _, p := range m.positions {
		result = append(result, p)
	}
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, driverID)
	return nil
}
