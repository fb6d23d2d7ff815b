package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aryan0dhankhar/workshop/internal/app"
	"github.com/aryan0dhankhar/workshop/internal/featureflags"
	"github.com/aryan0dhankhar/workshop/internal/handler"
	"github.com/aryan0dhankhar/workshop/internal/infrastructure/events"
	"github.com/aryan0dhankhar/workshop/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/workshop/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/workshop/internal/observability/tracing"
	"github.com/aryan0dhankhar/workshop/internal/persistence"
	"github.com/aryan0dhankhar/workshop/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/workshop/internal/reliability/retry"
	"github.com/aryan0dhankhar/workshop/internal/repository"
	"github.com/aryan0dhankhar/workshop/internal/security"
	"github.com/aryan0dhankhar/workshop/internal/security/audit"
	"github.com/aryan0dhankhar/workshop/internal/security/auth"
	"github.com/aryan0dhankhar/workshop/internal/security/ratelimit"
	"github.com/aryan0dhankhar/workshop/internal/service"
	"github.com/aryan0dhankhar/workshop/migrations"
	"github.com/aryan0dhankhar/workshop/pkg/cache"
	"github.com/aryan0dhankhar/workshop/pkg/config"
	"github.com/aryan0dhankhar/workshop/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting workshop server",
		slog.String("environment", cfg.Environment),
		slog.Any("flags", featureflags.Snapshot()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing
	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, "workshop", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Database. An unreachable server is tolerated: the facade serves the
	// fallback dataset until it answers.
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		URL:          cfg.Database.URL,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Name,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	}, log)
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if featureflags.Enabled(featureflags.AutoMigrate) {
		if err := migrations.Run(ctx, pool.GetDB(), "up"); err != nil {
			log.Warn("auto-migrate failed", slog.String("error", err.Error()))
		}
	}

	// 5. Stores
	fixtures := repository.DefaultFixtures()
	if cfg.FallbackFixtures != "" {
		fixtures, err = repository.LoadFixtures(cfg.FallbackFixtures)
		if err != nil {
			log.Error("failed to load fallback fixtures", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("fallback fixtures loaded", slog.String("path", cfg.FallbackFixtures))
	}
	primary := repository.NewPostgresStore(pool.GetDB(), log)
	fallback := repository.NewFallbackStore(fixtures)
	store := persistence.NewFacade(primary, fallback, persistence.Options{
		Retry: &retry.Config{
			MaxAttempts:       cfg.Store.RetryAttempts,
			InitialBackoff:    cfg.Store.RetryBackoff,
			MaxBackoff:        8 * cfg.Store.RetryBackoff,
			BackoffMultiplier: 2,
		},
		Breaker: circuitbreaker.NewCircuitBreaker(
			int32(cfg.Store.BreakerFailureThreshold),
			int32(cfg.Store.BreakerSuccessThreshold),
			cfg.Store.BreakerOpenTimeout,
		),
		Logger: log,
	})

	// 6. Cache and events
	var statsCache service.StatsCache = cache.NewStore()
	readiness := map[string]handler.Pinger{"database": primary, "redis": nil}
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, using in-memory cache", slog.String("error", err.Error()))
		} else {
			defer redisClient.Close()
			statsCache = redisClient
			readiness["redis"] = redisClient
		}
	}

	// Domain events reach the broker when configured and always drop the
	// cached dashboard counters.
	dashboardService := service.NewDashboardService(store, statsCache, cfg.StatsCacheTTL, log)
	publisher := events.Fanout{dashboardService}
	if cfg.AMQPURL != "" {
		publisher = append(publisher, events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue, log))
	}

	// 7. Security components
	tokenManager := auth.NewTokenManager(cfg.SessionSecret, "workshop")
	auditLogger := audit.NewLogger(log)
	loginLimiter := ratelimit.NewLimiter(cfg.LoginRateLimit, time.Minute)
	defer loginLimiter.Stop()

	// 8. Services
	authService := service.NewAuthService(store, primary, tokenManager, auditLogger, log)
	customerService := service.NewCustomerService(store, publisher, log)
	vendorService := service.NewVendorService(store, log)
	appointmentService := service.NewAppointmentService(store, publisher, auditLogger, log)
	historyService := service.NewHistoryService(store)
	healthService := service.NewHealthService(primary)

	// 9. Router
	strictGate := featureflags.Enabled(featureflags.StrictSessionGate)
	router := app.NewRouter(app.Deps{
		Auth:               handler.NewAuthHandler(authService, cfg.IsProduction(), log),
		Health:             handler.NewHealthHandler(healthService, authService, readiness, log),
		Customers:          handler.NewCustomersHandler(customerService, log),
		Vendors:            handler.NewVendorsHandler(vendorService, log),
		Appointments:       handler.NewAppointmentsHandler(appointmentService, log),
		Reports:            handler.NewReportsHandler(historyService, dashboardService, log),
		Pages:              handler.NewPagesHandler(cfg.StaticDir),
		Tokens:             tokenManager,
		Authz:              security.NewAuthorizationService(log),
		Audit:              auditLogger,
		LoginLimiter:       loginLimiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		StrictGate:         strictGate,
		Logger:             log,
	})

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("strict_session_gate", strictGate),
		slog.Int("login_rate_limit", cfg.LoginRateLimit),
		slog.Bool("redis", readiness["redis"] != nil),
		slog.Bool("amqp", cfg.AMQPURL != ""),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}
