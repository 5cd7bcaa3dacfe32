package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/TravelGo/internal/service"
	"github.com/utafrali/TravelGo/pkg/health"
	"github.com/utafrali/TravelGo/pkg/middleware"
)

// ServiceName labels HTTP metrics.
const ServiceName = "travelgo"

// Services groups the use cases the router dispatches to.
type Services struct {
	Catalog   *service.CatalogService
	Reviews   *service.ReviewService
	Bookings  *service.BookingService
	Dashboard *service.DashboardService
	Seller    *service.SellerService
	Auth      *service.AuthService
}

// RouterConfig carries the cross-cutting pieces of the router.
type RouterConfig struct {
	Resolver      middleware.SessionResolver
	Health        *health.Handler
	CORS          middleware.CORSConfig
	PprofCIDRs    []string
	RateLimiter   *middleware.RateLimiter
	SecureCookies bool
}

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(svc Services, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Authenticate(cfg.Resolver, logger))
	r.Use(middleware.RequestLogger(logger))

	// Health, metrics and profiling
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	packages := NewPackageHandler(svc.Catalog, svc.Reviews, logger)
	bookings := NewBookingHandler(svc.Bookings, logger)
	reviews := NewReviewHandler(svc.Reviews, logger)
	seller := NewSellerHandler(svc.Dashboard, svc.Seller, logger)
	auth := NewAuthHandler(svc.Auth, cfg.SecureCookies, logger)

	limit := cfg.RateLimiter.Handler

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog
		r.With(middleware.CacheControl(300)).Get("/categories", packages.Categories)
		r.Get("/packages", packages.List)
		r.Get("/packages/{id}", packages.Get)
		r.Get("/packages/{id}/reviews", packages.Reviews)
		r.Get("/packages/{id}/quote", packages.Quote)

		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.With(limit).Post("/signup", auth.SignUp)
			r.With(limit).Post("/signin", auth.SignIn)
			r.Post("/signout", auth.SignOut)
		})

		// Buyer mutations
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/bookings", bookings.Create)
			r.Post("/reviews", reviews.Create)
		})

		// Per-user reads
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.RequireAuth(logger))
			r.Get("/me", auth.Me)
			r.Get("/me/bookings", bookings.ListMine)
			r.Get("/bookings/{id}/voucher", bookings.Voucher)
		})

		// Seller area. Role checks happen in the services so non-sellers
		// get 401.
		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Get("/dashboard", seller.Dashboard)
			r.Get("/packages", seller.Packages)
			r.Get("/bookings/export", seller.ExportBookings)
		})
	})

	return r
}
