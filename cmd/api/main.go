package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/eventhub/internal/api/http"
	"github.com/spec-kit/eventhub/internal/api/http/handlers"
	"github.com/spec-kit/eventhub/internal/auth"
	"github.com/spec-kit/eventhub/internal/cache"
	"github.com/spec-kit/eventhub/internal/config"
	"github.com/spec-kit/eventhub/internal/events"
	"github.com/spec-kit/eventhub/internal/mail"
	"github.com/spec-kit/eventhub/internal/observability"
	"github.com/spec-kit/eventhub/internal/persistence"
	"github.com/spec-kit/eventhub/internal/repository"
	"github.com/spec-kit/eventhub/internal/service"
	"github.com/spec-kit/eventhub/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	rsvpRepo := repository.NewRSVPRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	eventCache := cache.NewEventCache(redis.Client, cfg.Cache.EventTTL(), logger)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:  eventRepo,
		UserRepo:   userRepo,
		RSVPRepo:   rsvpRepo,
		Dispatcher: dispatcher,
		Cache:      eventCache,
	})
	rsvpService := service.NewRSVPService(rsvpRepo, eventRepo, dispatcher)

	mailer := mail.NewMailer(cfg.Mail, logger)
	notificationService := service.NewNotificationService(dispatcher, mailer, logger, metrics)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Events:         handlers.NewEventsHandler(eventService),
		RSVP:           handlers.NewRSVPHandler(rsvpService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
