package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rideshare/internal/handler"
	"rideshare/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler      *handler.RideHandler
	DriverHandler    *handler.DriverHandler
	PassengerHandler *handler.PassengerHandler
	PaymentHandler   *handler.PaymentHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Passenger routes.
		passengers := v1.Group("/passengers")
		{
			passengers.POST("", deps.PassengerHandler.RegisterPassenger)
			passengers.GET("/:id", deps.PassengerHandler.GetPassenger)
			passengers.GET("/:id/wallet", deps.PassengerHandler.GetWalletBalance)
			passengers.POST("/:id/wallet/topup", deps.PassengerHandler.TopUpWallet)
			passengers.GET("/:id/rides", deps.PassengerHandler.GetPassengerRides)
			passengers.GET("/:id/payments", deps.PaymentHandler.GetPassengerPayments)
		}

		// Ride lifecycle routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.RequestRide)
			rides.GET("/active", deps.RideHandler.GetActiveRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/accept", deps.RideHandler.AcceptRide)
			rides.POST("/:id/start", deps.RideHandler.StartRide)
			rides.POST("/:id/complete", deps.RideHandler.CompleteRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/rate", deps.RideHandler.RateRide)
			rides.GET("/:id/payment", deps.PaymentHandler.GetRidePayment)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.RegisterDriver)
			drivers.GET("/available", deps.DriverHandler.GetAvailableDrivers)
			drivers.GET("/nearby", deps.DriverHandler.GetNearbyDrivers)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.PUT("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.PUT("/:id/availability", deps.DriverHandler.SetAvailability)
			drivers.GET("/:id/earnings", deps.DriverHandler.GetEarnings)
			drivers.GET("/:id/rating", deps.DriverHandler.GetRating)
			drivers.GET("/:id/rides", deps.DriverHandler.GetDriverRides)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.POST("/:id/refund", deps.PaymentHandler.RefundPayment)
		}
	}

	return router
}
