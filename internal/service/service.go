package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/tazabekov/tour-booking-room-2/internal/activities"
	"github.com/tazabekov/tour-booking-room-2/internal/database"
	"github.com/tazabekov/tour-booking-room-2/internal/models"
	"github.com/tazabekov/tour-booking-room-2/internal/validation"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotEnoughSlots = database.ErrNotEnoughSlots
	ErrInvalidRequest = errors.New("invalid request")
)

// ValidationError carries the per-field errors of a rejected booking request
type ValidationError struct {
	Fields models.ValidationResult
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "invalid booking request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// Repository is the read side of the tour database
type Repository interface {
	ListTours(ctx context.Context, query models.TourQuery) ([]models.Tour, int, error)
	GetTourByID(ctx context.Context, id int64) (*models.Tour, error)
	GetFilterOptions(ctx context.Context) (*models.FilterOptions, error)
	GetBookingByID(ctx context.Context, id int64) (*models.BookingResult, error)
	GetBookingsByEmail(ctx context.Context, email string) ([]models.BookingResult, error)
}

// Notifier pushes live slot updates to watchers of a tour
type Notifier interface {
	BroadcastBookingConfirmed(tourID, bookingID int64, available int)
	BroadcastSlotsUpdated(tourID int64, available int)
}

// BookingService defines the booking service interface
type BookingService interface {
	// ListTours pages the catalogue. A zero Page or PageSize takes the default.
	ListTours(ctx context.Context, query models.TourQuery) (*models.ToursPage, error)
	GetTour(ctx context.Context, id int64) (*models.Tour, error)
	GetFilterOptions(ctx context.Context) (*models.FilterOptions, error)
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResult, error)
	GetBooking(ctx context.Context, id int64) (*models.BookingResult, error)
	GetBookingsByEmail(ctx context.Context, email string) ([]models.BookingResult, error)
}

// Options tune the booking service
type Options struct {
	TaskQueue      string
	BookingTimeout time.Duration
	Logger         *slog.Logger
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	repo           Repository
	temporalClient client.Client
	notifier       Notifier
	taskQueue      string
	timeout        time.Duration
	logger         *slog.Logger
}

// NewBookingService creates a new BookingService. notifier may be nil.
func NewBookingService(repo Repository, temporalClient client.Client, notifier Notifier, opts Options) BookingService {
	if opts.TaskQueue == "" {
		opts.TaskQueue = models.TaskQueue
	}
	if opts.BookingTimeout <= 0 {
		opts.BookingTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &bookingServiceImpl{
		repo:           repo,
		temporalClient: temporalClient,
		notifier:       notifier,
		taskQueue:      opts.TaskQueue,
		timeout:        opts.BookingTimeout,
		logger:         opts.Logger,
	}
}

func (s *bookingServiceImpl) ListTours(ctx context.Context, query models.TourQuery) (*models.ToursPage, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = DefaultPageSize
	}
	if query.Page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", ErrInvalidRequest)
	}
	if query.PageSize < 1 || query.PageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: page_size must be between 1 and %d", ErrInvalidRequest, MaxPageSize)
	}

	tours, total, err := s.repo.ListTours(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}

	return &models.ToursPage{
		Tours:      tours,
		Total:      total,
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalPages: (total + query.PageSize - 1) / query.PageSize,
	}, nil
}

func (s *bookingServiceImpl) GetTour(ctx context.Context, id int64) (*models.Tour, error) {
	tour, err := s.repo.GetTourByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("tour %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	return tour, nil
}

func (s *bookingServiceImpl) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	opts, err := s.repo.GetFilterOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get filter options: %w", err)
	}
	return opts, nil
}

// CreateBooking validates the request against the tour, then runs the booking
// workflow and waits for its result.
func (s *bookingServiceImpl) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResult, error) {
	req = req.Draft().Request()

	tour, err := s.GetTour(ctx, req.TourID)
	if err != nil {
		return nil, err
	}

	if result := validation.Validate(req.Draft(), tour.Capacity()); !result.Valid() {
		return nil, &ValidationError{Fields: result}
	}
	if tour.AvailableSlots < req.NumberOfPeople {
		return nil, &database.SlotsError{Available: tour.AvailableSlots}
	}

	requestID := uuid.New().String()
	workflowOptions := client.StartWorkflowOptions{
		ID:        "booking-" + requestID,
		TaskQueue: s.taskQueue,
	}
	input := models.BookingWorkflowInput{RequestID: requestID, Request: req}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	run, err := s.temporalClient.ExecuteWorkflow(ctx, workflowOptions, models.BookingWorkflowName, input)
	if err != nil {
		return nil, fmt.Errorf("failed to start workflow: %w", err)
	}

	var booking models.BookingResult
	if err := run.Get(ctx, &booking); err != nil {
		err = s.workflowError(workflowOptions.ID, err)
		var slotsErr *database.SlotsError
		if errors.As(err, &slotsErr) && s.notifier != nil {
			// Another booking took the slots after the early check.
			s.notifier.BroadcastSlotsUpdated(req.TourID, slotsErr.Available)
		}
		return nil, err
	}

	s.logger.Info("booking created", "workflowId", workflowOptions.ID, "bookingId", booking.ID, "tourId", booking.TourID)
	s.notify(ctx, booking)
	return &booking, nil
}

// workflowError turns business failures raised by the activities back into
// service errors.
func (s *bookingServiceImpl) workflowError(workflowID string, err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		s.logger.Error("booking workflow failed", "workflowId", workflowID, "error", err)
		return fmt.Errorf("booking workflow failed: %w", err)
	}

	switch appErr.Type() {
	case activities.ErrTypeTourNotFound:
		return fmt.Errorf("tour: %w", ErrNotFound)
	case activities.ErrTypeNotEnoughSlots:
		var available int
		if appErr.HasDetails() {
			_ = appErr.Details(&available)
		}
		return &database.SlotsError{Available: available}
	case activities.ErrTypeInvalidBooking:
		fields := models.ValidationResult{}
		if appErr.HasDetails() {
			_ = appErr.Details(&fields)
		}
		if fields.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidRequest, appErr.Error())
		}
		return &ValidationError{Fields: fields}
	}

	s.logger.Error("booking workflow failed", "workflowId", workflowID, "type", appErr.Type(), "error", err)
	return fmt.Errorf("booking workflow failed: %w", err)
}

func (s *bookingServiceImpl) notify(ctx context.Context, booking models.BookingResult) {
	if s.notifier == nil {
		return
	}
	tour, err := s.repo.GetTourByID(ctx, booking.TourID)
	if err != nil {
		s.logger.Warn("could not reload tour for slot update", "tourId", booking.TourID, "error", err)
		return
	}
	s.notifier.BroadcastBookingConfirmed(tour.ID, booking.ID, tour.AvailableSlots)
}

func (s *bookingServiceImpl) GetBooking(ctx context.Context, id int64) (*models.BookingResult, error) {
	booking, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (s *bookingServiceImpl) GetBookingsByEmail(ctx context.Context, email string) ([]models.BookingResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	bookings, err := s.repo.GetBookingsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}
