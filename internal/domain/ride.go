package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested RideStatus = "REQUESTED"
	RideStatusAccepted  RideStatus = "ACCEPTED"
	RideStatusPickedUp  RideStatus = "PICKED_UP"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// IsTerminal reports whether the status admits no further transitions.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// RideType selects the fare schedule for a ride.
type RideType string

const (
	RideTypeStandard RideType = "STANDARD"
	RideTypePool     RideType = "POOL"
	RideTypeLuxury   RideType = "LUXURY"
)

// PaymentMethod represents the funding source for a ride.
type PaymentMethod string

const (
	PaymentMethodWallet     PaymentMethod = "WALLET"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
)

// Ride represents a single passenger transport transaction.
//
// DistanceKm and SurgeMultiplier are resolved once at request time and never
// change afterwards. Fare is recomputed from them at request time and again at
// completion. Rating is 0 until the passenger rates the completed ride.
type Ride struct {
	ID              string
	PassengerID     string
	DriverID        string // empty until a driver accepts
	Pickup          Location
	Dropoff         Location
	Status          RideStatus
	RideType        RideType
	PaymentMethod   PaymentMethod
	Fare            float64
	DistanceKm      float64
	SurgeMultiplier float64
	Rating          int
	RequestedAt     time.Time
	PickedUpAt      time.Time // zero until the ride starts
	DroppedOffAt    time.Time // zero until the ride completes
}
