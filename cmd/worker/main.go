package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/tazabekov/tour-booking-room-2/internal/activities"
	"github.com/tazabekov/tour-booking-room-2/internal/config"
	"github.com/tazabekov/tour-booking-room-2/internal/database"
	"github.com/tazabekov/tour-booking-room-2/internal/models"
	"github.com/tazabekov/tour-booking-room-2/internal/mq"
	"github.com/tazabekov/tour-booking-room-2/internal/obs"
	"github.com/tazabekov/tour-booking-room-2/internal/workflows"
)

const serviceName = "tour-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stdout).With("service", serviceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.Version, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	logger.Info("Connecting to database...")
	pool, err := pgxpool.New(ctx, cfg.PoolDSN())
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Info("Connected to database")

	var publisher activities.Publisher
	if cfg.RabbitMQURL != "" {
		p, err := mq.NewPublisher(cfg.RabbitMQURL, cfg.Exchange)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
		logger.Info("Connected to RabbitMQ", "exchange", cfg.Exchange)
	} else {
		logger.Warn("RABBITMQ_URL not set, booking events will not be published")
	}

	logger.Info("Connecting to Temporal...", "host", cfg.TemporalHost)
	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNamespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		return err
	}
	defer c.Close()
	logger.Info("Connected to Temporal")

	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflowWithOptions(workflows.BookingWorkflow, workflow.RegisterOptions{Name: models.BookingWorkflowName})

	acts := activities.NewActivities(database.NewRepository(pool), publisher)
	w.RegisterActivityWithOptions(acts.CreateBooking, activity.RegisterOptions{Name: activities.CreateBookingName})
	w.RegisterActivityWithOptions(acts.PublishBookingConfirmed, activity.RegisterOptions{Name: activities.PublishBookingConfirmedName})

	logger.Info("Starting Temporal worker...", "taskQueue", cfg.TaskQueue)
	return w.Run(worker.InterruptCh())
}
