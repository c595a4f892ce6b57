package router // package router wires the local facade's HTTP routes

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/evcharge-agent/internal/config"
	"github.com/iliyamo/evcharge-agent/internal/handler"
	"github.com/iliyamo/evcharge-agent/internal/middleware"
	"github.com/iliyamo/evcharge-agent/internal/model"
)

// Handlers collects everything the router registers.
type Handlers struct {
	Auth     *handler.AuthHandler
	Bookings *handler.BookingHandler
	Stations *handler.StationHandler
	Operator *handler.OperatorHandler
}

// Register wires all routes.  rdb may be nil; the browse cache and
// rate limiter then degrade to pass-throughs.
func Register(e *echo.Echo, h Handlers, sessionSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated: login and owner registration.
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/logout", h.Auth.Logout)

	// Station browse is public on the kiosk (guests compare chargers
	// before signing in) and sits behind the optional Redis response
	// cache and rate limiter.
	browse := e.Group("/v1/stations")
	browse.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	browse.Use(middleware.NewBrowseCache(config.LoadBrowseCacheConfig(), rdb))
	browse.GET("", h.Stations.List)
	browse.GET("/nearby", h.Stations.Nearby)
	browse.GET("/:id", h.Stations.Get)

	// Everything below requires a local session token.
	authed := e.Group("/v1")
	authed.Use(middleware.SessionAuth(sessionSecret))

	authed.GET("/me", h.Auth.Me)

	bookings := authed.Group("/bookings")
	bookings.GET("", h.Bookings.List)
	bookings.GET("/slots/check", h.Bookings.CheckSlot)
	bookings.GET("/:id", h.Bookings.Get)
	bookings.POST("", h.Bookings.Create)
	bookings.PUT("/:id", h.Bookings.Update)
	bookings.DELETE("/:id", h.Bookings.Cancel)

	// Operator surface: QR check-in/check-out and profile.
	op := authed.Group("/operator")
	op.Use(middleware.RequireRole(model.RoleStationOperator, model.RoleAdmin))
	op.GET("/bookings/qr/:code", h.Operator.LookupQR)
	op.POST("/bookings/:id/confirm", h.Operator.Confirm)
	op.POST("/bookings/:id/finalize", h.Operator.Finalize)
	op.GET("/profile", h.Operator.Profile)
	op.PUT("/profile", h.Operator.UpdateProfile)
}
