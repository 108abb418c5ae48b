package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService   *service.DriverService
	userService     *service.UserService
	rideService     *service.RideService
	matchingService *service.MatchingService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(
	driverService *service.DriverService,
	userService *service.UserService,
	rideService *service.RideService,
	matchingService *service.MatchingService,
) *DriverHandler {
	return &DriverHandler{
		driverService:   driverService,
		userService:     userService,
		rideService:     rideService,
		matchingService: matchingService,
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
}

// UpdateLocationRequest is the HTTP request body for a location report.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SetAvailabilityRequest is the HTTP request body for an availability flip.
type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	VehicleNumber string   `json:"vehicle_number"`
	VehicleType   string   `json:"vehicle_type"`
	Available     bool     `json:"available"`
	Rating        float64  `json:"rating"`
	TotalRides    int      `json:"total_rides"`
	Earnings      float64  `json:"earnings"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	resp := DriverResponse{
		ID:            d.ID,
		Name:          d.Name,
		Email:         d.Email,
		Phone:         d.Phone,
		VehicleNumber: d.VehicleNumber,
		VehicleType:   d.VehicleType,
		Available:     d.Available,
		Rating:        d.Rating,
		TotalRides:    d.TotalRides,
		Earnings:      d.Earnings,
	}
	if d.Location != nil {
		lat, lng := d.Location.Latitude, d.Location.Longitude
		resp.Lat, resp.Lng = &lat, &lng
	}
	return resp
}

func toDriverListResponse(drivers []*domain.Driver) []DriverResponse {
	out := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, toDriverResponse(d))
	}
	return out
}

// RegisterDriver handles POST /v1/drivers
func (h *DriverHandler) RegisterDriver(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.userService.RegisterDriver(c.Request.Context(), service.RegisterDriverInput{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetAvailableDrivers handles GET /v1/drivers/available
func (h *DriverHandler) GetAvailableDrivers(c *gin.Context) {
	drivers, err := h.driverService.GetAvailableDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"drivers": toDriverListResponse(drivers)})
}

// GetNearbyDrivers handles GET /v1/drivers/nearby?lat=&lng=&radius_km=
func (h *DriverHandler) GetNearbyDrivers(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng are required"})
		return
	}

	radius := 5.0
	if raw := c.Query("radius_km"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid radius_km"})
			return
		}
		radius = r
	}

	drivers, err := h.matchingService.NearbyDrivers(c.Request.Context(), domain.Location{Latitude: lat, Longitude: lng}, radius)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"drivers": toDriverListResponse(drivers)})
}

// UpdateLocation handles PUT /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.driverService.UpdateLocation(c.Request.Context(), service.UpdateLocationRequest{
		DriverID: c.Param("id"),
		Lat:      req.Lat,
		Lng:      req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "location updated"})
}

// SetAvailability handles PUT /v1/drivers/:id/availability
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.SetAvailability(c.Request.Context(), c.Param("id"), req.Available); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"available": req.Available})
}

// GetEarnings handles GET /v1/drivers/:id/earnings
func (h *DriverHandler) GetEarnings(c *gin.Context) {
	earnings, err := h.driverService.GetEarnings(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"earnings": earnings})
}

// GetRating handles GET /v1/drivers/:id/rating
func (h *DriverHandler) GetRating(c *gin.Context) {
	rating, total, err := h.driverService.GetRating(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"rating": rating, "total_rides": total})
}

// GetDriverRides handles GET /v1/drivers/:id/rides
func (h *DriverHandler) GetDriverRides(c *gin.Context) {
	rides, err := h.rideService.GetDriverRides(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"rides": toRideListResponse(rides)})
}
