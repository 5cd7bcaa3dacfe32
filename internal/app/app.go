package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/TravelGo/internal/auth"
	"github.com/utafrali/TravelGo/internal/config"
	"github.com/utafrali/TravelGo/internal/dashboard"
	"github.com/utafrali/TravelGo/internal/event"
	handler "github.com/utafrali/TravelGo/internal/handler/http"
	"github.com/utafrali/TravelGo/internal/identity"
	"github.com/utafrali/TravelGo/internal/repository/postgres"
	redisrepo "github.com/utafrali/TravelGo/internal/repository/redis"
	"github.com/utafrali/TravelGo/internal/service"
	"github.com/utafrali/TravelGo/internal/voucher"
	"github.com/utafrali/TravelGo/migrations"
	"github.com/utafrali/TravelGo/pkg/database"
	"github.com/utafrali/TravelGo/pkg/health"
	"github.com/utafrali/TravelGo/pkg/httpclient"
	pkgkafka "github.com/utafrali/TravelGo/pkg/kafka"
	"github.com/utafrali/TravelGo/pkg/middleware"
	"github.com/utafrali/TravelGo/pkg/tracing"
)

// App wires together all dependencies and runs the marketplace API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	limiter        *middleware.RateLimiter
	tracerShutdown func(context.Context) error
	wg             sync.WaitGroup
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rounding, err := cfg.Rounding()
	if err != nil {
		return nil, err
	}

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	redisCfg := cfg.Redis()
	rdb, err := database.NewRedisClient(ctx, redisCfg, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          rdb,
		tracerShutdown: tracerShutdown,
	}

	// Events go nowhere when Kafka is switched off; bookings and reviews
	// still succeed.
	var publisher pkgkafka.Publisher = pkgkafka.NopPublisher{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Repositories and stores.
	packageRepo := postgres.NewPackageRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	dashboardCache := redisrepo.NewDashboardCache(rdb, redisCfg, cfg.DashboardCacheTTL)
	sessions := auth.NewSessions(
		auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL),
		redisrepo.NewSessionStore(rdb, redisCfg),
	).WithProfiles(profileRepo)

	identityDoer := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("identity"),
		logger,
	)
	identityClient := identity.NewClient(cfg.IdentityURL, cfg.IdentityAPIKey, identityDoer, logger)

	// Services.
	events := event.NewProducer(publisher, logger)
	reviewSvc := service.NewReviewService(reviewRepo, packageRepo, events, logger)
	svc := handler.Services{
		Catalog:  service.NewCatalogService(packageRepo, reviewSvc, logger),
		Reviews:  reviewSvc,
		Bookings: service.NewBookingService(bookingRepo, packageRepo, events, dashboardCache, voucher.NewSigner(cfg.VoucherSecret), logger),
		Dashboard: service.NewDashboardService(packageRepo, bookingRepo, dashboardCache, dashboard.Options{
			DiscountedRevenue: cfg.DashboardDiscountedRevenue,
			Rounding:          rounding,
			RecentLimit:       dashboard.RecentLimit,
		}, logger),
		Seller: service.NewSellerService(packageRepo, bookingRepo, logger),
		Auth:   service.NewAuthService(identityClient, profileRepo, sessions, logger),
	}

	// Health checks. Only the catalog store makes the service unready.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		cors.AllowedOrigins = cfg.CORSAllowedOrigins
	}

	a.limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:            cfg.RateLimitRPS,
		Burst:          cfg.RateLimitBurst,
		TrustedProxies: cfg.TrustedProxyCIDRs,
	}, logger)

	router := handler.NewRouter(svc, handler.RouterConfig{
		Resolver:      sessions.Resolver(),
		Health:        healthHandler,
		CORS:          cors,
		PprofCIDRs:    cfg.PprofAllowedCIDRs,
		RateLimiter:   a.limiter,
		SecureCookies: !strings.EqualFold(cfg.Environment, "development"),
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The dashboard consumer drops cached summaries when bookings land.
	if cfg.KafkaEnabled && cfg.DashboardConsumer {
		a.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		processed := redisrepo.NewIdempotencyStore(rdb, redisCfg, event.DashboardGroupID, cfg.ProcessedEventsTTL)
		a.consumer = event.NewDashboardConsumer(
			cfg.KafkaBrokers,
			event.NewDashboardInvalidator(dashboardCache, logger),
			processed,
			a.dlq,
			logger,
		)
	}

	return a, nil
}

// Run starts the HTTP server and the dashboard consumer, and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if a.consumer != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.consumer.Start(consumerCtx); err != nil {
				a.logger.Error("dashboard consumer stopped", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		stopConsumer()
		return errors.Join(err, a.Shutdown())
	}

	stopConsumer()
	return a.Shutdown()
}

// Shutdown stops components in dependency order: HTTP first so in-flight
// requests finish, then the rate limiter sweeper, the tracer, the consumer, the Kafka writers, Redis
// and finally PostgreSQL.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpCtx, httpCancel := context.WithTimeout(context.Background(), timeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.limiter.Stop()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.wg.Wait()
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("dashboard consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
