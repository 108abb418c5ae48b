package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// PassengerHandler handles HTTP requests for passengers.
type PassengerHandler struct {
	userService *service.UserService
	rideService *service.RideService
}

// NewPassengerHandler creates a new PassengerHandler.
func NewPassengerHandler(userService *service.UserService, rideService *service.RideService) *PassengerHandler {
	return &PassengerHandler{
		userService: userService,
		rideService: rideService,
	}
}

// RegisterPassengerRequest is the HTTP request body for registering a passenger.
type RegisterPassengerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// TopUpRequest is the HTTP request body for a wallet top-up.
type TopUpRequest struct {
	Amount float64 `json:"amount"`
}

// PassengerResponse is the HTTP representation of a passenger.
type PassengerResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	WalletBalance float64 `json:"wallet_balance"`
	CreatedAt     string  `json:"created_at"`
}

func toPassengerResponse(p *domain.Passenger) PassengerResponse {
	return PassengerResponse{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		WalletBalance: p.WalletBalance,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

// RegisterPassenger handles POST /v1/passengers
func (h *PassengerHandler) RegisterPassenger(c *gin.Context) {
	var req RegisterPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	passenger, err := h.userService.RegisterPassenger(c.Request.Context(), service.RegisterPassengerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toPassengerResponse(passenger))
}

// GetPassenger handles GET /v1/passengers/:id
func (h *PassengerHandler) GetPassenger(c *gin.Context) {
	passenger, err := h.userService.GetPassenger(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toPassengerResponse(passenger))
}

// TopUpWallet handles POST /v1/passengers/:id/wallet/topup
func (h *PassengerHandler) TopUpWallet(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	balance, err := h.userService.TopUpWallet(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"wallet_balance": balance})
}

// GetWalletBalance handles GET /v1/passengers/:id/wallet
func (h *PassengerHandler) GetWalletBalance(c *gin.Context) {
	balance, err := h.userService.GetWalletBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"wallet_balance": balance})
}

// GetPassengerRides handles GET /v1/passengers/:id/rides
func (h *PassengerHandler) GetPassengerRides(c *gin.Context) {
	rides, err := h.rideService.GetPassengerRides(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"rides": toRideListResponse(rides)})
}
