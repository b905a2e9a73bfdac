package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/event-booking/config"
	"github.com/Eursukkul/event-booking/internal/consumer"
	"github.com/Eursukkul/event-booking/internal/handler"
	"github.com/Eursukkul/event-booking/internal/middleware"
	"github.com/Eursukkul/event-booking/internal/repository"
	"github.com/Eursukkul/event-booking/internal/service"
	"github.com/Eursukkul/event-booking/pkg/auth"
	"github.com/Eursukkul/event-booking/pkg/cache"
	"github.com/Eursukkul/event-booking/pkg/database"
	"github.com/Eursukkul/event-booking/pkg/logger"
	"github.com/Eursukkul/event-booking/pkg/rabbitmq"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "event-booking:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn("JWT_SECRET is the development default, tokens can be forged")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Optional infrastructure: nil interfaces switch the feature off.
	var publisher service.Publisher
	var mqConsumer *rabbitmq.Consumer
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, log)
		if err != nil {
			return fmt.Errorf("connect publisher: %w", err)
		}
		defer p.Close()
		publisher = p

		mqConsumer, err = rabbitmq.NewConsumer(cfg.RabbitURL, log)
		if err != nil {
			return fmt.Errorf("connect consumer: %w", err)
		}
		defer mqConsumer.Close()
	}

	var eventCache service.EventCache
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		eventCache = cache.NewEventCache(client, cfg.CacheTTL)
	}

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	bookingSvc := service.NewBookingService(bookingRepo, eventRepo, publisher, eventCache, log, cfg.BookingMaxRetries)
	eventSvc := service.NewEventService(eventRepo, bookingSvc, publisher, eventCache, log, cfg.BookingMaxRetries)
	authSvc := service.NewAuthService(userRepo, tokens)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(log)
	e.Validator = middleware.NewRequestValidator()
	e.Use(middleware.CORS(cfg.CORSOrigins))
	e.Use(echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMw.Recover())
	e.Use(echoMw.ContextTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "event-booking"})
	})

	authn := middleware.Auth(tokens)
	handler.NewAuthHandler(authSvc).RegisterRoutes(e.Group("/api/auth"))
	handler.NewEventHandler(eventSvc).RegisterRoutes(e.Group("/api/events"), authn)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e.Group("/api/bookings", authn))

	var msgs <-chan amqp.Delivery
	if mqConsumer != nil {
		if n, err := mqConsumer.ReplayDeadLetters(ctx); err != nil {
			log.WithError(err).Warn("replay dead-lettered messages")
		} else if n > 0 {
			log.WithField("count", n).Info("replayed dead-lettered messages")
		}
		if msgs, err = mqConsumer.Consume(); err != nil {
			return fmt.Errorf("start consuming: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("port", cfg.ServerPort).Info("event booking service starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if msgs != nil {
		eventConsumer := consumer.NewEventConsumer(bookingSvc, log)
		g.Go(func() error {
			return eventConsumer.Run(gctx, msgs)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("service stopped")
	return nil
}
