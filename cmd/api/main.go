package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/transit-booking/internal/api/http"
	"github.com/spec-kit/transit-booking/internal/api/http/handlers"
	"github.com/spec-kit/transit-booking/internal/auth"
	"github.com/spec-kit/transit-booking/internal/config"
	"github.com/spec-kit/transit-booking/internal/events"
	"github.com/spec-kit/transit-booking/internal/observability"
	"github.com/spec-kit/transit-booking/internal/otp"
	"github.com/spec-kit/transit-booking/internal/persistence"
	"github.com/spec-kit/transit-booking/internal/repository"
	"github.com/spec-kit/transit-booking/internal/service"
	"github.com/spec-kit/transit-booking/internal/worker"
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

	var userRepo repository.UserRepository
	var ticketRepo repository.TicketRepository
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
	} else {
		userRepo = repository.NewMemoryUserRepository()
		ticketRepo = repository.NewMemoryTicketRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)
	events.NewAMQPForwarder(cfg.Broker.AMQPURL, cfg.Broker.Queue, logger).Register(dispatcher)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	codes := otp.NewGenerator(cfg.OTP.Length, cfg.OTP.BcryptCost)
	throttle := otp.NewThrottle(redis.Client, cfg.OTP.ResendCooldown(), logger)

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		Codes:      codes,
		Throttle:   throttle,
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	bookingService := service.NewBookingService(service.BookingDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(bookingService),
		AuthMiddleware: auth.NewMiddleware(tokens, userRepo),
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
