package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/tazabekov/tour-booking-room-2/internal/activities"
	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

const (
	// CreateBookingTimeout bounds a single attempt at storing the booking
	CreateBookingTimeout = 30 * time.Second
	// PublishTimeout bounds a single attempt at publishing the booking event
	PublishTimeout = 10 * time.Second
	// MaxCreateAttempts is how often a transient storage failure is retried
	MaxCreateAttempts = 3
)

// BookingWorkflow stores one booking and announces it. It runs exactly one
// CreateBooking activity per booking request; business failures are not retried.
func BookingWorkflow(ctx workflow.Context, input models.BookingWorkflowInput) (*models.BookingResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Booking workflow started", "requestId", input.RequestID, "tourId", input.Request.TourID)

	createCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: CreateBookingTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    MaxCreateAttempts,
			NonRetryableErrorTypes: []string{
				activities.ErrTypeTourNotFound,
				activities.ErrTypeNotEnoughSlots,
				activities.ErrTypeInvalidBooking,
			},
		},
	})

	var booking models.BookingResult
	err := workflow.ExecuteActivity(createCtx, activities.CreateBookingName, input).Get(ctx, &booking)
	if err != nil {
		logger.Warn("Booking not created", "requestId", input.RequestID, "error", err)
		return nil, err
	}

	publishCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: PublishTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	})

	// The booking is already stored; a lost event must not fail it.
	err = workflow.ExecuteActivity(publishCtx, activities.PublishBookingConfirmedName, booking).Get(ctx, nil)
	if err != nil {
		logger.Error("Failed to publish booking event", "bookingId", booking.ID, "error", err)
	}

	logger.Info("Booking workflow completed", "requestId", input.RequestID, "bookingId", booking.ID)
	return &booking, nil
}
