package service

import (
	"context"

	"rideshare/internal/repository"
)

// Surge thresholds: the multiplier steps up with the number of rides that are
// currently in a non-terminal state. A load heuristic, not a market model;
// the thresholds are part of the pricing contract.
const (
	surgeHighThreshold = 10
	surgeMedThreshold  = 5
	surgeHighFactor    = 2.0
	surgeMedFactor     = 1.5
)

// SurgeService computes the surge multiplier snapshotted onto each new ride.
type SurgeService struct {
	rideRepo repository.RideRepository
}

// NewSurgeService creates a new SurgeService.
func NewSurgeService(rideRepo repository.RideRepository) *SurgeService {
	return &SurgeService{rideRepo: rideRepo}
}

// Multiplier returns the current surge multiplier from the authoritative
// count of active rides. On a store error it fails open at 1.0 so pricing
// never blocks a request.
func (s *SurgeService) Multiplier(ctx context.Context) float64 {
	active, err := s.rideRepo.CountActive(ctx)
	if err != nil {
		return 1.0
	}

	switch {
	case active > surgeHighThreshold:
		return surgeHighFactor
	case active > surgeMedThreshold:
		return surgeMedFactor
	default:
		return 1.0
	}
}
