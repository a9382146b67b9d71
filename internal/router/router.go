// Package router maps the HTTP surface onto handlers and middleware.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/gowes/bike-rental-api/internal/config"
	"github.com/gowes/bike-rental-api/internal/handler"
	"github.com/gowes/bike-rental-api/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Vehicles *handler.VehicleHandler
	Stations *handler.StationHandler
	Services *handler.ServiceHandler
	Rentals  *handler.RentalHandler
	Reports  *handler.ReportHandler
}

// Register wires all routes. Public routes live under /api/auth plus
// the health check; everything else requires a valid access token, and
// write operations on the directory require the admin role. The Redis
// client may be nil, in which case rate limiting and caching are
// disabled.
func Register(e *echo.Echo, db *sql.DB, rdb *redis.Client, cfg config.Config, h Handlers) {
	e.GET("/healthz", handler.Health(db))

	rl := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cacheList := middleware.CacheGET(config.LoadCacheConfig(), rdb)

	// Public auth endpoints.
	pub := e.Group("/api/auth", rl)
	pub.POST("/register", h.Auth.Register)
	pub.POST("/login", h.Auth.Login)
	pub.POST("/refresh", h.Auth.Refresh)
	pub.POST("/logout", h.Auth.Logout)

	// Everything below requires a valid access token.
	api := e.Group("/api", rl, middleware.JWTAuth(cfg.JWTSecret))
	admin := middleware.RequireRole("admin")

	api.GET("/auth/profile", h.Auth.Profile)
	api.POST("/auth/logout-all", h.Auth.LogoutAll)

	// Vehicle directory. Reads are open to all users and cached.
	api.GET("/kendaraan", h.Vehicles.List, cacheList)
	api.GET("/kendaraan/:id", h.Vehicles.Get)
	api.POST("/kendaraan", h.Vehicles.Create, admin)
	api.PUT("/kendaraan/:id", h.Vehicles.Update, admin)
	api.DELETE("/kendaraan/:id", h.Vehicles.Delete, admin)
	api.PATCH("/kendaraan/:id/maintenance", h.Vehicles.SetMaintenance, admin)

	// Station directory.
	api.GET("/stasiun", h.Stations.List, cacheList)
	api.GET("/stasiun/summary", h.Stations.Summary, admin)
	api.GET("/stasiun/nearby", h.Stations.Nearby)
	api.GET("/stasiun/:id", h.Stations.Get)
	api.GET("/stasiun/:id/kendaraan", h.Stations.Vehicles)
	api.POST("/stasiun", h.Stations.Create, admin)
	api.PUT("/stasiun/:id", h.Stations.Update, admin)
	api.DELETE("/stasiun/:id", h.Stations.Delete, admin)

	// Service catalog.
	api.GET("/layanan", h.Services.List, cacheList)
	api.GET("/layanan/:id", h.Services.Get)
	api.POST("/layanan", h.Services.Create, admin)
	api.PUT("/layanan/:id", h.Services.Update, admin)
	api.DELETE("/layanan/:id", h.Services.Delete, admin)

	// Rental lifecycle.
	api.POST("/transaksi/sewa", h.Rentals.Rent)
	api.GET("/transaksi", h.Rentals.ListMine)
	api.GET("/transaksi/aktif", h.Rentals.Active)
	api.GET("/transaksi/semua", h.Rentals.ListAll, admin)
	api.GET("/transaksi/:id", h.Rentals.Get)
	api.POST("/transaksi/:id/kembali", h.Rentals.Return)
	api.POST("/transaksi/:id/layanan", h.Rentals.AttachService)
	api.POST("/transaksi/:id/batal", h.Rentals.Cancel, admin)
	api.POST("/transaksi/:id/bayar", h.Rentals.MarkPaid, admin)

	// Damage reports.
	api.GET("/laporan", h.Reports.List, admin)
	api.GET("/laporan/:id", h.Reports.Get)
	api.POST("/laporan", h.Reports.Create)
	api.PUT("/laporan/:id", h.Reports.Update, admin)
	api.DELETE("/laporan/:id", h.Reports.Delete, admin)
}
