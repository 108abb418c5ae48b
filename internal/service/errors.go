package service

import "errors"

var (
	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidRideType is returned when the ride type is not a known variant.
	ErrInvalidRideType = errors.New("invalid ride type")

	// ErrInvalidPaymentMethod is returned when the payment method is not a known variant.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidStateTransition is returned when an operation is attempted from
	// a status that disallows it.
	ErrInvalidStateTransition = errors.New("ride is not in the required state for this operation")

	// ErrUnauthorized is returned when a passenger acts on a ride they do not own.
	ErrUnauthorized = errors.New("ride does not belong to this passenger")

	// ErrInsufficientFunds is returned when a wallet debit would take the
	// balance below zero.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrPaymentFailed is returned when the card rail declines or is unreachable.
	ErrPaymentFailed = errors.New("card payment failed")

	// ErrPaymentNotRefundable is returned when refunding a payment that is not
	// in the COMPLETED state.
	ErrPaymentNotRefundable = errors.New("payment cannot be refunded")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrRideAlreadyRated is returned when rating a ride a second time.
	ErrRideAlreadyRated = errors.New("ride has already been rated")

	// ErrInvalidAmount is returned when a wallet top-up amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrEmailAlreadyRegistered is returned when registering with a taken email.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrInvalidLocation is returned when coordinates are outside their valid range.
	ErrInvalidLocation = errors.New("invalid coordinates")

	// ErrNoDriverAvailable is returned when no driver can be matched.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrGeocodingFailed is returned when the maps provider cannot resolve a
	// location or a route. A failed provider call aborts the ride request.
	ErrGeocodingFailed = errors.New("geocoding provider failure")
)
