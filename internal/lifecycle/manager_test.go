package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tazabekov/tour-booking-room-2/internal/client"
	"github.com/tazabekov/tour-booking-room-2/internal/models"
	"github.com/tazabekov/tour-booking-room-2/internal/validation"
)

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResult), args.Error(1)
}

func testTour() models.Tour {
	return models.Tour{
		ID:             7,
		Title:          "Cappadocia Balloons",
		Country:        "Turkey",
		Price:          decimal.RequireFromString("199.99"),
		MaxPeople:      5,
		AvailableSlots: 5,
	}
}

func fillValid(d *models.BookingDraft) {
	d.CustomerName = "Ada Lovelace"
	d.CustomerEmail = "ada@example.com"
	d.CustomerPhone = "+44 20 7946 0000"
	d.Travelers = 2
}

func confirmed(req models.CreateBookingRequest) *models.BookingResult {
	return &models.BookingResult{
		ID:             101,
		TourID:         req.TourID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		NumberOfPeople: req.NumberOfPeople,
		TotalPrice:     decimal.RequireFromString("399.98"),
		Status:         models.BookingStatusConfirmed,
	}
}

type recorder struct {
	mu  sync.Mutex
	seq []State
}

func (r *recorder) hook(_, to State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq = append(r.seq, to)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.seq...)
}

func TestNewManager_StartsInDraft(t *testing.T) {
	m := NewManager(&mockCreator{}, testTour())

	snap := m.Snapshot()
	assert.Equal(t, StateDraft, snap.State)
	assert.Equal(t, int64(7), snap.Draft.TourID)
	assert.Equal(t, 1, snap.Draft.Travelers)
	assert.True(t, snap.Errors.Valid())
	assert.Nil(t, snap.Result)
}

func TestSubmit_Confirms(t *testing.T) {
	creator := &mockCreator{}
	rec := &recorder{}
	m := NewManager(creator, testTour(), WithTransitionHook(rec.hook))
	require.NoError(t, m.Edit(fillValid))

	want := models.BookingDraft{TourID: 7, CustomerName: "Ada Lovelace", CustomerEmail: "ada@example.com", CustomerPhone: "+44 20 7946 0000", Travelers: 2}
	creator.On("CreateBooking", mock.Anything, want.Request()).
		Return(confirmed(want.Request()), nil).Once()

	snap := m.Submit(context.Background())

	assert.Equal(t, StateConfirmed, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, int64(101), snap.Result.ID)
	assert.Equal(t, "399.98", snap.QuotedTotal.String())
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateConfirmed}, rec.states())
	creator.AssertExpectations(t)
}

func TestSubmit_InvalidDraftNeverCallsCreator(t *testing.T) {
	creator := &mockCreator{}
	rec := &recorder{}
	m := NewManager(creator, testTour(), WithTransitionHook(rec.hook))
	require.NoError(t, m.Edit(func(d *models.BookingDraft) {
		fillValid(d)
		d.CustomerEmail = "ada@"
		d.Travelers = 6
	}))

	snap := m.Submit(context.Background())

	assert.Equal(t, StateDraft, snap.State)
	assert.Equal(t, []models.Field{models.FieldEmail, models.FieldTravelers}, snap.Errors.Fields())
	assert.Equal(t, validation.MsgEmailInvalid, snap.Errors[models.FieldEmail])
	assert.Equal(t, validation.MsgTravelersMaximum(5), snap.Errors[models.FieldTravelers])
	assert.Equal(t, []State{StateValidating, StateDraft}, rec.states())
	creator.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestSubmit_ClearsErrorsOnceFixed(t *testing.T) {
	creator := &mockCreator{}
	m := NewManager(creator, testTour())

	snap := m.Submit(context.Background())
	require.Equal(t, StateDraft, snap.State)
	require.False(t, snap.Errors.Valid())

	require.NoError(t, m.Edit(fillValid))
	creator.On("CreateBooking", mock.Anything, mock.Anything).
		Return(&models.BookingResult{ID: 1, Status: models.BookingStatusConfirmed}, nil).Once()

	snap = m.Submit(context.Background())
	assert.Equal(t, StateConfirmed, snap.State)
	assert.True(t, snap.Errors.Valid())
}

func TestSubmit_DoubleSubmitSendsOneRequest(t *testing.T) {
	creator := &mockCreator{}
	m := NewManager(creator, testTour())
	require.NoError(t, m.Edit(fillValid))

	started := make(chan struct{})
	release := make(chan struct{})
	creator.On("CreateBooking", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&models.BookingResult{ID: 9, Status: models.BookingStatusConfirmed}, nil).Once()

	done := make(chan Snapshot, 1)
	go func() { done <- m.Submit(context.Background()) }()
	<-started

	second := m.Submit(context.Background())
	assert.Equal(t, StateSubmitting, second.State)
	assert.ErrorIs(t, m.Edit(func(d *models.BookingDraft) { d.Travelers = 3 }), ErrNotEditable)

	close(release)
	select {
	case snap := <-done:
		assert.Equal(t, StateConfirmed, snap.State)
		assert.Equal(t, 2, snap.Draft.Travelers)
	case <-time.After(time.Second):
		t.Fatal("submit did not complete")
	}
	creator.AssertNumberOfCalls(t, "CreateBooking", 1)
}

func TestSubmit_TransportFailureKeepsDraft(t *testing.T) {
	creator := &mockCreator{}
	m := NewManager(creator, testTour())
	require.NoError(t, m.Edit(fillValid))
	before := m.Snapshot().Draft

	creator.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	snap := m.Submit(context.Background())
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, msgSubmitFailed, snap.Failure)
	assert.Equal(t, before, snap.Draft)
	assert.Nil(t, snap.Result)

	// A failed draft is editable and can be retried.
	require.NoError(t, m.Edit(func(d *models.BookingDraft) { d.Notes = "window seats" }))
	snap = m.Snapshot()
	assert.Equal(t, StateDraft, snap.State)
	assert.Empty(t, snap.Failure)

	creator.On("CreateBooking", mock.Anything, mock.Anything).
		Return(&models.BookingResult{ID: 5, Status: models.BookingStatusConfirmed}, nil).Once()
	snap = m.Submit(context.Background())
	assert.Equal(t, StateConfirmed, snap.State)
	creator.AssertNumberOfCalls(t, "CreateBooking", 2)
}

func TestSubmit_RetryFromFailedWithoutEdit(t *testing.T) {
	creator := &mockCreator{}
	m := NewManager(creator, testTour())
	require.NoError(t, m.Edit(fillValid))

	creator.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, context.DeadlineExceeded).Once()
	snap := m.Submit(context.Background())
	require.Equal(t, StateFailed, snap.State)
	assert.Equal(t, msgNoResponse, snap.Failure)

	creator.On("CreateBooking", mock.Anything, mock.Anything).
		Return(&models.BookingResult{ID: 6, Status: models.BookingStatusConfirmed}, nil).Once()
	snap = m.Submit(context.Background())
	assert.Equal(t, StateConfirmed, snap.State)
}

func TestSubmit_ServerRejectionSurfacesDetail(t *testing.T) {
	creator := &mockCreator{}
	m := NewManager(creator, testTour())
	require.NoError(t, m.Edit(fillValid))

	creator.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, &client.APIError{StatusCode: 400, Detail: "Not enough available slots. Only 1 slots left"}).Once()

	snap := m.Submit(context.Background())
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "Not enough available slots. Only 1 slots left", snap.Failure)
}

func TestSubmit_PricingFailureFailsLoudly(t *testing.T) {
	creator := &mockCreator{}
	tour := testTour()
	tour.Price = decimal.NewFromInt(-10)
	m := NewManager(creator, tour)
	require.NoError(t, m.Edit(fillValid))

	snap := m.Submit(context.Background())
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, msgPricing, snap.Failure)
	creator.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestConfirmedIsTerminal(t *testing.T) {
	creator := &mockCreator{}
	m := NewManager(creator, testTour())
	require.NoError(t, m.Edit(fillValid))
	creator.On("CreateBooking", mock.Anything, mock.Anything).
		Return(&models.BookingResult{ID: 3, Status: models.BookingStatusConfirmed}, nil).Once()

	require.Equal(t, StateConfirmed, m.Submit(context.Background()).State)

	assert.ErrorIs(t, m.Edit(func(d *models.BookingDraft) { d.Travelers = 4 }), ErrNotEditable)
	snap := m.Submit(context.Background())
	assert.Equal(t, StateConfirmed, snap.State)
	assert.Equal(t, 2, snap.Draft.Travelers)
	creator.AssertNumberOfCalls(t, "CreateBooking", 1)
}

func TestEdit_CannotChangeTour(t *testing.T) {
	m := NewManager(&mockCreator{}, testTour())

	require.NoError(t, m.Edit(func(d *models.BookingDraft) {
		d.TourID = 99
		d.CustomerName = "Grace"
	}))

	snap := m.Snapshot()
	assert.Equal(t, int64(7), snap.Draft.TourID)
	assert.Equal(t, "Grace", snap.Draft.CustomerName)
}

func TestAbandon_IgnoresLateCompletion(t *testing.T) {
	creator := &mockCreator{}
	rec := &recorder{}
	m := NewManager(creator, testTour(), WithTransitionHook(rec.hook))
	require.NoError(t, m.Edit(fillValid))

	started := make(chan struct{})
	release := make(chan struct{})
	creator.On("CreateBooking", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&models.BookingResult{ID: 11, Status: models.BookingStatusConfirmed}, nil).Once()

	done := make(chan Snapshot, 1)
	go func() { done <- m.Submit(context.Background()) }()
	<-started

	m.Abandon()
	close(release)

	snap := <-done
	assert.NotEqual(t, StateConfirmed, snap.State)
	assert.Nil(t, snap.Result)
	assert.Equal(t, []State{StateValidating, StateSubmitting}, rec.states())

	assert.ErrorIs(t, m.Edit(fillValid), ErrAbandoned)
	assert.Equal(t, snap.State, m.Submit(context.Background()).State)
	creator.AssertNumberOfCalls(t, "CreateBooking", 1)
}

func TestTotal_FollowsTravelers(t *testing.T) {
	m := NewManager(&mockCreator{}, testTour())

	total, err := m.Total()
	require.NoError(t, err)
	assert.Equal(t, "199.99", total.String())

	require.NoError(t, m.Edit(func(d *models.BookingDraft) { d.Travelers = 3 }))
	total, err = m.Total()
	require.NoError(t, err)
	assert.Equal(t, "599.97", total.String())

	require.NoError(t, m.Edit(func(d *models.BookingDraft) { d.Travelers = 0 }))
	_, err = m.Total()
	assert.Error(t, err)
}
