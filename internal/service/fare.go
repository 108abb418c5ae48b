package service

import "rideshare/internal/domain"

// FareStrategy prices a ride from its distance, surge multiplier, and type.
// Implementations are pure: the same ride always yields the same fare.
type FareStrategy interface {
	CalculateFare(ride *domain.Ride) float64
}

// StandardFare prices standard rides: base 5.0 plus 2.0 per km, times surge.
type StandardFare struct{}

func (StandardFare) CalculateFare(ride *domain.Ride) float64 {
	const (
		baseFare  = 5.0
		ratePerKm = 2.0
	)
	return (baseFare + ride.DistanceKm*ratePerKm) * ride.SurgeMultiplier
}

// PoolFare prices shared rides: base 3.0 plus 1.5 per km, times surge.
type PoolFare struct{}

func (PoolFare) CalculateFare(ride *domain.Ride) float64 {
	const (
		baseFare  = 3.0
		ratePerKm = 1.5
	)
	return (baseFare + ride.DistanceKm*ratePerKm) * ride.SurgeMultiplier
}

// LuxuryFare prices luxury rides: no base fare, 0.50 per km, times surge.
type LuxuryFare struct{}

func (LuxuryFare) CalculateFare(ride *domain.Ride) float64 {
	const ratePerKm = 0.50
	return ride.DistanceKm * ratePerKm * ride.SurgeMultiplier
}

// FareStrategyFor returns the fare strategy for the given ride type.
func FareStrategyFor(rideType domain.RideType) FareStrategy {
	switch rideType {
	case domain.RideTypeLuxury:
		return LuxuryFare{}
	case domain.RideTypePool:
		return PoolFare{}
	default:
		return StandardFare{}
	}
}

// ValidateRideType validates a ride type string, defaulting to STANDARD.
func ValidateRideType(rideType string) (domain.RideType, error) {
	switch domain.RideType(rideType) {
	case domain.RideTypeStandard, domain.RideTypePool, domain.RideTypeLuxury:
		return domain.RideType(rideType), nil
	case "":
		return domain.RideTypeStandard, nil
	default:
		return "", ErrInvalidRideType
	}
}

// ValidatePaymentMethod validates a payment method string, defaulting to WALLET.
func ValidatePaymentMethod(method string) (domain.PaymentMethod, error) {
	switch domain.PaymentMethod(method) {
	case domain.PaymentMethodWallet, domain.PaymentMethodCreditCard:
		return domain.PaymentMethod(method), nil
	case "":
		return domain.PaymentMethodWallet, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}
