// @title                      Task Manager API
// @version                    1.0
// @description                Accounts, sessions and per-user tasks.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/otenet/task-manager/docs"
	"github.com/otenet/task-manager/internal/api"
	"github.com/otenet/task-manager/internal/api/handler"
	"github.com/otenet/task-manager/internal/core/ports"
	"github.com/otenet/task-manager/internal/core/service"
	"github.com/otenet/task-manager/internal/infrastructure/config"
	mongodb "github.com/otenet/task-manager/internal/infrastructure/db/mongo"
	redisdb "github.com/otenet/task-manager/internal/infrastructure/db/redis"
	"github.com/otenet/task-manager/internal/infrastructure/imaging"
	"github.com/otenet/task-manager/internal/infrastructure/mailer"
	"github.com/otenet/task-manager/internal/infrastructure/queue"
	"github.com/otenet/task-manager/pkg/logger"
)

func main() {
	_ = godotenv.Load() // load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "task-manager"})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-manager",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server exited properly")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	users := mongodb.NewUserRepository(db, cfg.Mongo.Timeout)
	tasks := mongodb.NewTaskRepository(db, cfg.Mongo.Timeout)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := tasks.EnsureIndexes(ctx); err != nil {
		return err
	}

	probes := []handler.Probe{{
		Name:  "mongodb",
		Check: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}}

	// Redis only backs the rate limiter; run without it when unreachable.
	var limiter *redisdb.RateLimiter
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
		limiter = redisdb.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window)
		probes = append(probes, handler.Probe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	// --- Notifications ---
	var sender ports.NotificationSender = mailer.NewLogSender(logger.With("mailer"))
	if cfg.MailEnabled() {
		sender = mailer.NewMailgun(cfg.Mail.Domain, cfg.Mail.APIKey, cfg.Mail.Sender)
	}
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, sender, logger.With("notifications"))
	dispatcher.Start(ctx)

	// --- Services ---
	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	sessions := service.NewSessionRegistry(users, service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL))
	cascade := service.NewCascadeCoordinator(users, tasks, log)

	opts := api.Options{
		Log:               log,
		Probes:            probes,
		MetricsRegisterer: prometheus.DefaultRegisterer,
		MetricsGatherer:   prometheus.DefaultGatherer,
	}
	if limiter != nil {
		opts.Limiter = limiter
	}

	e := api.NewRouter(api.Services{
		Auth:     service.NewAuthService(users, sessions, hasher, dispatcher, log),
		Accounts: service.NewAccountService(users, hasher, imaging.NewAvatarProcessor(), cascade, log),
		Tasks:    service.NewTaskService(tasks, log),
	}, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
