// Package api provides the HTTP API for Roadmate.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/roadmate/roadmate/internal/alert"
	"github.com/roadmate/roadmate/internal/api/handler"
	"github.com/roadmate/roadmate/internal/api/middleware"
	"github.com/roadmate/roadmate/internal/auth"
	"github.com/roadmate/roadmate/internal/favorite"
	"github.com/roadmate/roadmate/internal/provider/resilience"
	"github.com/roadmate/roadmate/internal/routing"
	"github.com/roadmate/roadmate/internal/user"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version          string
	BuildTime        string
	Logger           zerolog.Logger
	ServiceName      string
	Metrics          *middleware.Metrics
	Pool             *pgxpool.Pool
	ProviderRegistry *resilience.Registry
	AuthService      *auth.Service
	UserService      *user.Service
	RoutingService   *routing.Service
	AlertService     *alert.Service
	FavoriteService  *favorite.Service
	// EnableDevLogin exposes POST /v1/auth/dev. Never enable in production.
	EnableDevLogin bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "roadmate-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool, cfg.ProviderRegistry)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	meHandler := handler.NewMeHandler(cfg.UserService)
	favoriteHandler := handler.NewFavoriteHandler(cfg.FavoriteService)
	routeHandler := handler.NewRouteHandler(cfg.RoutingService)
	alertHandler := handler.NewAlertHandler(cfg.AlertService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			// logout-all requires authentication
			r.With(authMiddleware).Post("/logout-all", authHandler.LogoutAll)
			if cfg.EnableDevLogin {
				r.Post("/dev", authHandler.DevLogin)
			}
		})

		// Ops endpoints (public) - standard rate limiting
		r.Route("/ops", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Me endpoints (authenticated) - user-based rate limiting
		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user
			r.Get("/", meHandler.GetMe)
			r.Patch("/", meHandler.UpdateMe)

			// Navigation preferences
			r.Get("/preferences", meHandler.GetPreferences)
			r.Put("/preferences", meHandler.UpdatePreferences)

			// Favorites
			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", favoriteHandler.ListFavorites)
				r.Post("/", favoriteHandler.CreateFavorite)
				r.Route("/{favoriteId}", func(r chi.Router) {
					r.Get("/", favoriteHandler.GetFavorite)
					r.Put("/", favoriteHandler.UpdateFavorite)
					r.Delete("/", favoriteHandler.DeleteFavorite)
				})
			})
		})

		// Route search - expensive provider traffic, strict rate limiting
		r.With(authMiddleware, expensiveRateLimit).Post("/routes:search", routeHandler.SearchRoutes)

		// Community alerts (authenticated) - user-based rate limiting
		r.Route("/alerts", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/", alertHandler.ListNearby)
			r.Post("/", alertHandler.Report)
			r.Get("/{alertId}", alertHandler.Get)
			r.Post("/{alertId}:validate", alertHandler.Validate)
			r.Post("/{alertId}:invalidate", alertHandler.Invalidate)
		})
	})

	return r
}
