package activities

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/tazabekov/tour-booking-room-2/internal/database"
	"github.com/tazabekov/tour-booking-room-2/internal/models"
	"github.com/tazabekov/tour-booking-room-2/internal/pricing"
	"github.com/tazabekov/tour-booking-room-2/internal/validation"
)

// Registered activity names
const (
	CreateBookingName           = "CreateBooking"
	PublishBookingConfirmedName = "PublishBookingConfirmed"
)

// Application error types for business failures. These are never retried.
const (
	ErrTypeTourNotFound   = "TourNotFound"
	ErrTypeNotEnoughSlots = "NotEnoughSlots"
	ErrTypeInvalidBooking = "InvalidBooking"
)

// Store is the persistence the booking activities need
type Store interface {
	GetTourByID(ctx context.Context, id int64) (*models.Tour, error)
	// CreateBooking must return the stored booking when called again with
	// the same request ID.
	CreateBooking(ctx context.Context, requestID string, req models.CreateBookingRequest, totalPrice decimal.Decimal) (*models.BookingResult, error)
}

// Publisher sends booking events to the broker
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Activities holds dependencies for activities
type Activities struct {
	store     Store
	publisher Publisher
}

// NewActivities creates activities with dependencies. publisher may be nil,
// in which case events are only logged.
func NewActivities(store Store, publisher Publisher) *Activities {
	return &Activities{store: store, publisher: publisher}
}

// CreateBooking prices the request against the stored tour and persists it
func (a *Activities) CreateBooking(ctx context.Context, input models.BookingWorkflowInput) (*models.BookingResult, error) {
	logger := activity.GetLogger(ctx)
	req := input.Request
	logger.Info("Creating booking", "requestId", input.RequestID, "tourId", req.TourID, "people", req.NumberOfPeople)

	tour, err := a.store.GetTourByID(ctx, req.TourID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, temporal.NewNonRetryableApplicationError("Tour not found", ErrTypeTourNotFound, nil)
		}
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}

	if result := validation.Validate(req.Draft(), tour.Capacity()); !result.Valid() {
		return nil, temporal.NewNonRetryableApplicationError("Invalid booking request", ErrTypeInvalidBooking, nil, result)
	}

	total, err := pricing.ComputeTotal(tour.Price, req.NumberOfPeople, tour.Capacity())
	if err != nil {
		logger.Error("Pricing rejected a validated request", "requestId", input.RequestID, "error", err)
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidBooking, err)
	}

	booking, err := a.store.CreateBooking(ctx, input.RequestID, req, total)
	if err != nil {
		var slotsErr *database.SlotsError
		switch {
		case errors.As(err, &slotsErr):
			logger.Warn("Not enough slots", "requestId", input.RequestID, "available", slotsErr.Available)
			return nil, temporal.NewNonRetryableApplicationError(slotsErr.Error(), ErrTypeNotEnoughSlots, nil, slotsErr.Available)
		case errors.Is(err, database.ErrNotFound):
			return nil, temporal.NewNonRetryableApplicationError("Tour not found", ErrTypeTourNotFound, nil)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logger.Info("Booking stored", "requestId", input.RequestID, "bookingId", booking.ID, "total", booking.TotalPrice.String())
	return booking, nil
}

// PublishBookingConfirmed announces a stored booking on the broker
func (a *Activities) PublishBookingConfirmed(ctx context.Context, booking models.BookingResult) error {
	logger := activity.GetLogger(ctx)

	if a.publisher == nil {
		logger.Info("No broker configured, skipping event", "bookingId", booking.ID)
		return nil
	}

	msg := models.BookingConfirmedMessage{
		BookingID:      booking.ID,
		TourID:         booking.TourID,
		CustomerEmail:  booking.CustomerEmail,
		CustomerName:   booking.CustomerName,
		NumberOfPeople: booking.NumberOfPeople,
		TotalPrice:     booking.TotalPrice.StringFixed(2),
	}
	if err := a.publisher.PublishJSON(ctx, models.BookingConfirmedEvent, msg); err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	logger.Info("Booking event published", "bookingId", booking.ID)
	return nil
}
