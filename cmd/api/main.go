package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/event-service/internal/api/http"
	"github.com/spec-kit/event-service/internal/api/http/handlers"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/observability"
	"github.com/spec-kit/event-service/internal/persistence"
	"github.com/spec-kit/event-service/internal/repository"
	"github.com/spec-kit/event-service/internal/service"
	"github.com/spec-kit/event-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(pg.Pool)
	eventRepo := repository.NewEventRepository(pg.Pool)
	participantRepo := repository.NewParticipantRepository(pg.Pool)

	tokens, err := auth.NewTokenService(cfg.Auth.SessionSecret, auth.WithDefaultTTL(cfg.Auth.SessionTTL()))
	if err != nil {
		logger.Fatal("failed to init token service", zap.Error(err))
	}

	authDeps := service.AuthDependencies{UserRepo: userRepo, Tokens: tokens, Logger: logger}
	guardOpts := []auth.GuardOption{auth.WithLogger(logger)}
	// Redis only gates readiness when revocation depends on it.
	var redisCheck handlers.Pinger
	if cfg.Auth.RevokeOnLogout {
		if redis.Client == nil {
			logger.Fatal("AUTH_REVOKE_ON_LOGOUT requires REDIS_ADDR")
		}
		revocations := repository.NewSessionRevocationRepository(redis.Client)
		authDeps.Revocations = revocations
		guardOpts = append(guardOpts, auth.WithRevocations(revocations))
		redisCheck = redis
		logger.Info("session revocation on logout enabled")
	}
	guard := auth.NewGuard(tokens, eventRepo, guardOpts...)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(
		service.NewNotificationService(logger, cfg.Notification),
		logger,
		cfg.Notification.QueueSize,
		cfg.Notification.Workers,
	)
	worker.StartNotificationWorker(ctx, dispatcher, notifications, service.NotificationTypes...)

	authService := service.NewAuthService(cfg.Auth, authDeps)
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:  eventRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	participantService := service.NewParticipantService(service.ParticipantDependencies{
		ParticipantRepo: participantRepo,
		EventService:    eventService,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisCheck, metrics),
		Users:        handlers.NewUsersHandler(authService, guard, cfg.Auth.CookieSecure),
		Events:       handlers.NewEventsHandler(eventService),
		Participants: handlers.NewParticipantsHandler(participantService),
		Guard:        guard,
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notifications.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
