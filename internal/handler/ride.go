package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// RideHandler handles HTTP requests for the ride lifecycle.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// RequestRideRequest is the HTTP request body for requesting a ride.
type RequestRideRequest struct {
	PassengerID     string `json:"passenger_id"`
	PickupPostcode  string `json:"pickup_postcode"`
	PickupAddress   string `json:"pickup_address,omitempty"`
	DropoffPostcode string `json:"dropoff_postcode"`
	DropoffAddress  string `json:"dropoff_address,omitempty"`
	RideType        string `json:"ride_type,omitempty"`       // STANDARD, POOL, LUXURY
	PaymentMethod   string `json:"payment_method,omitempty"`  // WALLET, CREDIT_CARD
}

// AcceptRideRequest is the HTTP request body for accepting a ride.
type AcceptRideRequest struct {
	DriverID string `json:"driver_id"`
}

// CancelRideRequest is the HTTP request body for a passenger cancellation.
type CancelRideRequest struct {
	PassengerID string `json:"passenger_id,omitempty"`
}

// RateRideRequest is the HTTP request body for rating a completed ride.
type RateRideRequest struct {
	Rating int `json:"rating"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID              string  `json:"id"`
	PassengerID     string  `json:"passenger_id"`
	DriverID        string  `json:"driver_id,omitempty"`
	PickupAddress   string  `json:"pickup_address"`
	PickupPostcode  string  `json:"pickup_postcode"`
	DropoffAddress  string  `json:"dropoff_address"`
	DropoffPostcode string  `json:"dropoff_postcode"`
	Status          string  `json:"status"`
	RideType        string  `json:"ride_type"`
	PaymentMethod   string  `json:"payment_method"`
	Fare            float64 `json:"fare"`
	DistanceKm      float64 `json:"distance_km"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	SurgeActive     bool    `json:"surge_active"`
	Rating          int     `json:"rating,omitempty"`
	RequestedAt     string  `json:"requested_at"`
	PickedUpAt      string  `json:"picked_up_at,omitempty"`
	DroppedOffAt    string  `json:"dropped_off_at,omitempty"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:              ride.ID,
		PassengerID:     ride.PassengerID,
		DriverID:        ride.DriverID,
		PickupAddress:   ride.Pickup.Address,
		PickupPostcode:  ride.Pickup.Postcode,
		DropoffAddress:  ride.Dropoff.Address,
		DropoffPostcode: ride.Dropoff.Postcode,
		Status:          string(ride.Status),
		RideType:        string(ride.RideType),
		PaymentMethod:   string(ride.PaymentMethod),
		Fare:            ride.Fare,
		DistanceKm:      ride.DistanceKm,
		SurgeMultiplier: ride.SurgeMultiplier,
		SurgeActive:     ride.SurgeMultiplier > 1.0,
		Rating:          ride.Rating,
		RequestedAt:     ride.RequestedAt.Format(time.RFC3339),
	}
	if !ride.PickedUpAt.IsZero() {
		resp.PickedUpAt = ride.PickedUpAt.Format(time.RFC3339)
	}
	if !ride.DroppedOffAt.IsZero() {
		resp.DroppedOffAt = ride.DroppedOffAt.Format(time.RFC3339)
	}
	return resp
}

func toRideListResponse(rides []*domain.Ride) []RideResponse {
	out := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		out = append(out, toRideResponse(r))
	}
	return out
}

// RequestRide handles POST /v1/rides
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rideType, err := service.ValidateRideType(req.RideType)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	paymentMethod, err := service.ValidatePaymentMethod(req.PaymentMethod)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ride, err := h.rideService.RequestRide(c.Request.Context(), service.RequestRideInput{
		PassengerID:     req.PassengerID,
		PickupPostcode:  req.PickupPostcode,
		PickupAddress:   req.PickupAddress,
		DropoffPostcode: req.DropoffPostcode,
		DropoffAddress:  req.DropoffAddress,
		RideType:        rideType,
		PaymentMethod:   paymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetActiveRides handles GET /v1/rides/active
func (h *RideHandler) GetActiveRides(c *gin.Context) {
	rides, err := h.rideService.GetActiveRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"rides": toRideListResponse(rides)})
}

// AcceptRide handles POST /v1/rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	var req AcceptRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.AcceptRide(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// StartRide handles POST /v1/rides/:id/start
func (h *RideHandler) StartRide(c *gin.Context) {
	ride, err := h.rideService.StartRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	ride, err := h.rideService.CompleteRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CancelRide handles POST /v1/rides/:id/cancel
// With a passenger_id in the body the cancellation is checked against the
// ride's owner; without one it is treated as an operator cancellation.
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var (
		ride *domain.Ride
		err  error
	)
	if req.PassengerID != "" {
		ride, err = h.rideService.CancelRideByPassenger(c.Request.Context(), c.Param("id"), req.PassengerID)
	} else {
		ride, err = h.rideService.CancelRide(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// RateRide handles POST /v1/rides/:id/rate
func (h *RideHandler) RateRide(c *gin.Context) {
	var req RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.RateRide(c.Request.Context(), c.Param("id"), req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
