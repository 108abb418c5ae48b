package service

import (
	"context"
	"math"

	"rideshare/internal/domain"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
)

const earthRadiusKm = 6371.0

// MatchingService finds drivers near a pickup point. The driver directory is
// the source of truth; the redis geo index, when configured, accelerates
// radius queries.
type MatchingService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.LocationStoreInterface
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(driverRepo repository.DriverRepository, locationStore redis.LocationStoreInterface) *MatchingService {
	return &MatchingService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
	}
}

// NearestDriver returns the available driver closest to the pickup point by
// great-circle distance. Drivers with no reported location are skipped; on a
// distance tie, the first driver encountered wins.
func (s *MatchingService) NearestDriver(ctx context.Context, pickup domain.Location) (*domain.Driver, error) {
	drivers, err := s.driverRepo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}

	var nearest *domain.Driver
	best := math.Inf(1)

	for _, d := range drivers {
		if d.Location == nil {
			continue
		}
		dist := haversineKm(pickup.Latitude, pickup.Longitude, d.Location.Latitude, d.Location.Longitude)
		if dist < best {
			best = dist
			nearest = d
		}
	}

	if nearest == nil {
		return nil, ErrNoDriverAvailable
	}
	return nearest, nil
}

// NearbyDrivers returns available drivers within radiusKm of the pickup
// point. The geo index narrows the candidate set when present; otherwise the
// directory is scanned.
func (s *MatchingService) NearbyDrivers(ctx context.Context, pickup domain.Location, radiusKm float64) ([]*domain.Driver, error) {
	if s.locationStore != nil {
		positions, err := s.locationStore.FindNearby(ctx, pickup.Latitude, pickup.Longitude, radiusKm)
		if err == nil {
			return s.resolvePositions(ctx, positions)
		}
		// Index unavailable; fall through to the directory scan.
	}

	drivers, err := s.driverRepo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}

	var nearby []*domain.Driver
	for _, d := range drivers {
		if d.Location == nil {
			continue
		}
		if haversineKm(pickup.Latitude, pickup.Longitude, d.Location.Latitude, d.Location.Longitude) <= radiusKm {
			nearby = append(nearby, d)
		}
	}
	return nearby, nil
}

func (s *MatchingService) resolvePositions(ctx context.Context, positions []redis.DriverPosition) ([]*domain.Driver, error) {
	var drivers []*domain.Driver
	for _, p := range positions {
		d, err := s.driverRepo.GetByID(ctx, p.DriverID)
		if err != nil {
			// A stale index entry is not fatal to the query.
			continue
		}
		if !d.Available {
			continue
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

// haversineKm returns the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
