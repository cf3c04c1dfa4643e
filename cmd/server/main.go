package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"

	"github.com/tazabekov/tour-booking-room-2/internal/config"
	"github.com/tazabekov/tour-booking-room-2/internal/database"
	"github.com/tazabekov/tour-booking-room-2/internal/handlers"
	"github.com/tazabekov/tour-booking-room-2/internal/obs"
	"github.com/tazabekov/tour-booking-room-2/internal/router"
	"github.com/tazabekov/tour-booking-room-2/internal/service"
	"github.com/tazabekov/tour-booking-room-2/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stdout).With("service", router.ServiceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, router.ServiceName, cfg.Version, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	pool, err := pgxpool.New(ctx, cfg.PoolDSN())
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Info("Connected to database")

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNamespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		return err
	}
	defer temporalClient.Close()
	logger.Info("Connected to Temporal", "host", cfg.TemporalHost)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	repo := database.NewRepository(pool)
	bookingService := service.NewBookingService(repo, temporalClient, hub, service.Options{
		TaskQueue:      cfg.TaskQueue,
		BookingTimeout: cfg.BookingTimeout,
		Logger:         logger,
	})
	h := handlers.NewHandler(bookingService, hub, cfg.Version, logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewHandler(h, cfg.CORSOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
