package service

import (
	"context"

	"rideshare/internal/domain"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
)

// DriverService handles driver-side operations outside the ride lifecycle:
// location reports, availability, earnings and ratings.
type DriverService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.LocationStoreInterface
	locks         *Locks
}

// NewDriverService creates a new DriverService. locks must be the same set
// the lifecycle engine uses, so availability flips here contend with the
// engine's driver writes.
func NewDriverService(driverRepo repository.DriverRepository, locationStore redis.LocationStoreInterface, locks *Locks) *DriverService {
	return &DriverService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
		locks:         locks,
	}
}

// UpdateLocationRequest contains the parameters for updating driver location.
type UpdateLocationRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// UpdateLocation records a driver's position in the directory and mirrors it
// into the geo index when one is configured.
func (s *DriverService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) error {
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}

	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return ErrInvalidLocation
	}

	s.locks.drivers.get(req.DriverID).Lock()
	defer s.locks.drivers.get(req.DriverID).Unlock()

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return err
	}

	driver.Location = &domain.Location{Latitude: req.Lat, Longitude: req.Lng}
	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return err
	}

	if s.locationStore != nil {
		// Index failures degrade matching to a directory scan, nothing more.
		_ = s.locationStore.UpdateLocation(ctx, req.DriverID, req.Lat, req.Lng)
	}

	return nil
}

// SetAvailability flips a driver between available and unavailable. Going
// unavailable also removes the driver from the geo index.
func (s *DriverService) SetAvailability(ctx context.Context, driverID string, available bool) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	s.locks.drivers.get(driverID).Lock()
	defer s.locks.drivers.get(driverID).Unlock()

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	driver.Available = available
	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return err
	}

	if !available && s.locationStore != nil {
		_ = s.locationStore.RemoveLocation(ctx, driverID)
	}

	return nil
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// GetAvailableDrivers retrieves all drivers currently accepting rides.
func (s *DriverService) GetAvailableDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAvailable(ctx)
}

// GetEarnings returns the driver's accumulated settled fares.
func (s *DriverService) GetEarnings(ctx context.Context, driverID string) (float64, error) {
	driver, err := s.GetDriver(ctx, driverID)
	if err != nil {
		return 0, err
	}
	return driver.Earnings, nil
}

// GetRating returns the driver's average rating and the number of rated rides.
func (s *DriverService) GetRating(ctx context.Context, driverID string) (float64, int, error) {
	driver, err := s.GetDriver(ctx, driverID)
	if err != nil {
		return 0, 0, err
	}
	return driver.Rating, driver.TotalRides, nil
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
