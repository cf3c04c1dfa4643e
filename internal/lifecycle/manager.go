// Package lifecycle drives a single booking draft through validation,
// submission and confirmation.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tazabekov/tour-booking-room-2/internal/client"
	"github.com/tazabekov/tour-booking-room-2/internal/models"
	"github.com/tazabekov/tour-booking-room-2/internal/pricing"
	"github.com/tazabekov/tour-booking-room-2/internal/validation"
)

type State string

const (
	StateDraft      State = "draft"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
	StateFailed     State = "failed"
)

var (
	ErrNotEditable = errors.New("draft is not editable")
	ErrAbandoned   = errors.New("draft abandoned")
)

const (
	msgSubmitFailed = "Could not submit the booking. Please try again."
	msgNoResponse   = "The booking service did not respond. Please try again."
	msgPricing      = "The price for this booking could not be calculated."
)

// BookingCreator is the slice of the repository client the manager needs
type BookingCreator interface {
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResult, error)
}

// TransitionHook observes state changes. It runs outside the manager's lock.
type TransitionHook func(from, to State)

// Snapshot is a consistent copy of the manager's state
type Snapshot struct {
	Token       uuid.UUID
	State       State
	Draft       models.BookingDraft
	Errors      models.ValidationResult
	Failure     string
	QuotedTotal decimal.Decimal
	Result      *models.BookingResult
}

type transition struct {
	from, to State
}

// Manager owns one booking draft. A confirmed draft is final; a new booking
// needs a new Manager.
type Manager struct {
	creator BookingCreator
	tour    models.Tour
	token   uuid.UUID
	logger  *slog.Logger
	hook    TransitionHook

	mu         sync.Mutex
	state      State
	draft      models.BookingDraft
	errs       models.ValidationResult
	failure    string
	quoted     decimal.Decimal
	result     *models.BookingResult
	generation uint64
	abandoned  bool
}

// Option configures a Manager
type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithTransitionHook(h TransitionHook) Option {
	return func(m *Manager) {
		m.hook = h
	}
}

// NewManager starts a fresh draft for tour with one traveler
func NewManager(creator BookingCreator, tour models.Tour, opts ...Option) *Manager {
	m := &Manager{
		creator: creator,
		tour:    tour,
		token:   uuid.New(),
		logger:  slog.Default(),
		state:   StateDraft,
		draft:   models.BookingDraft{TourID: tour.ID, Travelers: 1},
		errs:    models.ValidationResult{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("draft", m.token.String(), "tourId", tour.ID)
	return m
}

// Edit applies fn to the draft. Allowed in Draft and Failed; an edit in
// Failed returns the draft to Draft. The tour cannot be changed.
func (m *Manager) Edit(fn func(d *models.BookingDraft)) error {
	m.mu.Lock()
	if m.abandoned {
		m.mu.Unlock()
		return ErrAbandoned
	}
	if m.state != StateDraft && m.state != StateFailed {
		state := m.state
		m.mu.Unlock()
		m.logger.Debug("edit rejected", "state", state)
		return ErrNotEditable
	}

	d := m.draft
	fn(&d)
	d.TourID = m.tour.ID
	m.draft = d

	var fired []transition
	if m.state == StateFailed {
		m.failure = ""
		fired = append(fired, m.setState(StateDraft))
	}
	m.mu.Unlock()

	m.fire(fired)
	return nil
}

// Submit validates the draft and, if valid, creates the booking. It never
// returns an error: the outcome is the resulting state. A Submit while
// another is validating or in flight, after confirmation or after Abandon
// is ignored and returns the current snapshot.
func (m *Manager) Submit(ctx context.Context) Snapshot {
	m.mu.Lock()
	if m.abandoned || m.state == StateValidating || m.state == StateSubmitting || m.state == StateConfirmed {
		m.logger.Debug("submit ignored", "state", m.state, "abandoned", m.abandoned)
		snap := m.snapshot()
		m.mu.Unlock()
		return snap
	}

	fired := []transition{m.setState(StateValidating)}

	result := validation.Validate(m.draft, m.tour.Capacity())
	if !result.Valid() {
		m.errs = result
		fired = append(fired, m.setState(StateDraft))
		return m.finish(fired)
	}
	m.errs = models.ValidationResult{}
	m.failure = ""
	fired = append(fired, m.setState(StateSubmitting))

	total, err := pricing.ComputeTotal(m.tour.Price, m.draft.Travelers, m.tour.Capacity())
	if err != nil {
		m.logger.Error("pricing rejected a validated draft", "error", err, "travelers", m.draft.Travelers, "capacity", m.tour.Capacity())
		m.failure = msgPricing
		fired = append(fired, m.setState(StateFailed))
		return m.finish(fired)
	}
	m.quoted = total

	m.generation++
	gen := m.generation
	req := m.draft.Request()
	m.mu.Unlock()
	m.fire(fired)

	m.logger.Info("submitting booking", "travelers", req.NumberOfPeople, "total", total.String())
	booking, err := m.creator.CreateBooking(ctx, req)

	m.mu.Lock()
	if m.abandoned || gen != m.generation {
		m.logger.Info("ignoring late booking completion", "generation", gen)
		snap := m.snapshot()
		m.mu.Unlock()
		return snap
	}
	if err != nil {
		m.logger.Warn("booking submission failed", "error", err)
		m.failure = failureMessage(err)
		return m.finish([]transition{m.setState(StateFailed)})
	}

	m.result = booking
	m.logger.Info("booking confirmed", "bookingId", booking.ID)
	return m.finish([]transition{m.setState(StateConfirmed)})
}

// Abandon detaches the manager from its owner. Any in-flight completion is
// ignored and further edits or submits have no effect.
func (m *Manager) Abandon() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandoned = true
	m.generation++
}

// Total recomputes the price of the current draft.
func (m *Manager) Total() (decimal.Decimal, error) {
	m.mu.Lock()
	travelers := m.draft.Travelers
	m.mu.Unlock()
	return pricing.ComputeTotal(m.tour.Price, travelers, m.tour.Capacity())
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) setState(to State) transition {
	t := transition{from: m.state, to: to}
	m.state = to
	return t
}

// finish releases the lock taken by Submit and reports transitions.
func (m *Manager) finish(fired []transition) Snapshot {
	snap := m.snapshot()
	m.mu.Unlock()
	m.fire(fired)
	return snap
}

func (m *Manager) fire(fired []transition) {
	if m.hook == nil {
		return
	}
	for _, t := range fired {
		m.hook(t.from, t.to)
	}
}

func (m *Manager) snapshot() Snapshot {
	return Snapshot{
		Token:       m.token,
		State:       m.state,
		Draft:       m.draft,
		Errors:      m.errs.Clone(),
		Failure:     m.failure,
		QuotedTotal: m.quoted,
		Result:      m.result,
	}
}

func failureMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.Is(err, context.DeadlineExceeded):
		return msgNoResponse
	default:
		return msgSubmitFailed
	}
}
