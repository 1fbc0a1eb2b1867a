// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/carterperez-dev/templates/shop-backend/internal/admin"
	"github.com/carterperez-dev/templates/shop-backend/internal/auth"
	"github.com/carterperez-dev/templates/shop-backend/internal/config"
	"github.com/carterperez-dev/templates/shop-backend/internal/core"
	"github.com/carterperez-dev/templates/shop-backend/internal/health"
	"github.com/carterperez-dev/templates/shop-backend/internal/metrics"
	"github.com/carterperez-dev/templates/shop-backend/internal/middleware"
	"github.com/carterperez-dev/templates/shop-backend/internal/notify"
	"github.com/carterperez-dev/templates/shop-backend/internal/otp"
	"github.com/carterperez-dev/templates/shop-backend/internal/region"
	"github.com/carterperez-dev/templates/shop-backend/internal/server"
	"github.com/carterperez-dev/templates/shop-backend/internal/session"
	"github.com/carterperez-dev/templates/shop-backend/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to dotenv file")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load dotenv file", "path", *envPath, "error", err)
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	for _, name := range cfg.GeneratedSecrets {
		logger.Warn("secret not configured, generated an ephemeral one",
			"secret", name,
		)
	}

	telemetry := core.Noop(cfg.Otel.ServiceName)
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB.DB); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "HS256",
		"access_ttl", jwtManager.AccessTokenTTL(),
		"refresh_ttl", jwtManager.RefreshTokenTTL(),
	)

	emailOTP, err := otp.NewEngine(cfg.OTP.EmailSecret, cfg.OTP)
	if err != nil {
		return err
	}
	phoneOTP, err := otp.NewEngine(cfg.OTP.PhoneSecret, cfg.OTP)
	if err != nil {
		return err
	}

	smsSender, err := notify.NewSMSSender(cfg.SMS, logger)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(
		notify.NewMailer(cfg.Mail, logger),
		smsSender,
		cfg.Notify,
		emailOTP.Period(),
		logger,
	)
	logger.Info("notification dispatcher initialized",
		"smtp", cfg.Mail.Enabled(),
		"sms_provider", cfg.SMS.Provider,
	)

	appMetrics := metrics.New()

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	sessionRepo := session.NewRepository(db.DB)
	sessionSvc := session.NewService(sessionRepo)
	sessionHandler := session.NewHandler(sessionSvc)

	regionRepo := region.NewRepository(db.DB)
	regionSvc := region.NewService(regionRepo)
	regionHandler := region.NewHandler(regionSvc)

	authSvc := auth.NewService(auth.ServiceConfig{
		Users:    userSvc,
		Sessions: sessionSvc,
		JWT:      jwtManager,
		EmailOTP: emailOTP,
		PhoneOTP: phoneOTP,
		Notifier: dispatcher,
		Throttle: core.NewCooldown(redis.Client, "otp:cooldown:", cfg.OTP.ResendCooldown),
		Metrics:  appMetrics,
		Tracer:   telemetry.Tracer,
		Logger:   logger,

		RegisterSendTimeout: cfg.Notify.RegisterTimeout,
	})
	authHandler := auth.NewHandler(authSvc)

	healthHandler := health.NewHandler().
		AddCheck("database", db).
		AddCheck("redis", redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Accounts:   userSvc,
		Sessions:   sessionSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		MigrationVersion: func(ctx context.Context) (int64, error) {
			return core.MigrationVersion(ctx, db.DB.DB)
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(appMetrics))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:    middleware.LimitFromConfig(cfg.RateLimit),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, appMetrics.Handler())
	}

	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.LimitFromConfig(cfg.AuthRateLimit),
		KeyFunc:  middleware.KeyByIPAndEndpoint,
		FailOpen: true,
	}).Handler

	authenticator := middleware.Authenticator(jwtManager)

	router.Route("/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			authHandler.RegisterRoutes(r, authLimiter)
			userHandler.RegisterRoutes(r, authenticator)
		})

		sessionHandler.RegisterRoutes(r, authenticator)
		regionHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, middleware.RequireAdmin)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
