// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-show-booking/internal/config"
	"github.com/iliyamo/movie-show-booking/internal/handler"
	"github.com/iliyamo/movie-show-booking/internal/middleware"
	"github.com/iliyamo/movie-show-booking/internal/model"
)

// Deps collects everything the route table needs. The Redis client may be
// nil, in which case caching and rate limiting become pass-through.
type Deps struct {
	Cfg     config.Config
	Auth    *handler.AuthHandler
	Browse  *handler.BrowseHandler
	Booking *handler.BookingHandler
	Catalog *handler.CatalogHandler
	Redis   *redis.Client
}

// Register mounts all routes on the Echo instance.
//
// Layout:
//
//	GET  /healthz                          liveness probe
//	POST /v1/auth/register|login|...       public auth endpoints
//	GET  /v1/movies, /v1/movies/:id/shows  public browse (cached)
//	POST /v1/shows/:id/bookings            authenticated booking
//	...                                    see handler docs
//	/v1/admin/*                            ADMIN role only
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	rate := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	v1 := e.Group("/v1", rate)

	auth := v1.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/refresh-access", d.Auth.RefreshAccess)
	auth.POST("/logout", d.Auth.Logout)

	// Browse endpoints are public; availability is computed per request and
	// the cache TTL bounds staleness.
	v1.GET("/movies", d.Browse.ListMovies, cache)
	v1.GET("/movies/:id/shows", d.Browse.ListShowsByMovie, cache)

	authed := v1.Group("", middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))
	authed.GET("/auth/me", d.Auth.Me)
	authed.POST("/shows/:id/bookings", d.Booking.Create)
	authed.DELETE("/bookings/:id", d.Booking.Cancel)
	authed.GET("/bookings/:id", d.Booking.Get)
	authed.GET("/my-bookings", d.Booking.ListMine)

	admin := v1.Group("/admin", middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.POST("/movies", d.Catalog.CreateMovie)
	admin.PUT("/movies/:id", d.Catalog.UpdateMovie)
	admin.POST("/shows", d.Catalog.CreateShow)
	admin.GET("/shows/:id/bookings", d.Catalog.ListShowBookings)
}
