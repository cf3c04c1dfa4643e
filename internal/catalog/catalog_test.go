package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListTours(ctx context.Context, query models.TourQuery) (*models.ToursPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ToursPage), args.Error(1)
}

// gatedLister blocks each call until its gate for the requested country is released.
type gatedLister struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	calls chan string
	pages map[string]*models.ToursPage
	errs  map[string]error
}

func newGatedLister() *gatedLister {
	return &gatedLister{
		gates: map[string]chan struct{}{},
		calls: make(chan string, 8),
		pages: map[string]*models.ToursPage{},
		errs:  map[string]error{},
	}
}

func (g *gatedLister) gate(country string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gates[country] == nil {
		g.gates[country] = make(chan struct{})
	}
	return g.gates[country]
}

func (g *gatedLister) ListTours(ctx context.Context, query models.TourQuery) (*models.ToursPage, error) {
	gate := g.gate(query.Country)
	g.calls <- query.Country
	<-gate
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pages[query.Country], g.errs[query.Country]
}

func pageOf(tours []models.Tour) *models.ToursPage {
	return &models.ToursPage{Tours: tours, Total: len(tours), Page: 1, PageSize: DefaultPageSize, TotalPages: 1}
}

func TestCatalog_RefreshAppliesFilteredResult(t *testing.T) {
	lister := new(mockLister)
	criteria := models.FilterCriteria{Country: "Turkey", PriceRange: priceRange("0", "1000"), SearchQuery: "istanbul"}

	lister.On("ListTours", mock.Anything, mock.MatchedBy(func(q models.TourQuery) bool {
		return q.Country == "Turkey" && q.PageSize == 20 && q.MaxPrice.Equal(d("1000"))
	})).Return(pageOf(fixtureTours()), nil)

	c := New(lister, WithPageSize(20))
	snap, applied, err := c.Refresh(context.Background(), criteria)

	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, uint64(1), snap.Seq)
	assert.Equal(t, []int64{3}, ids(snap.Tours))
	assert.Equal(t, 10, snap.ServerTotal)
	assert.Equal(t, snap, c.Current())
	lister.AssertExpectations(t)
}

func TestCatalog_RefreshRejectsInvalidCriteria(t *testing.T) {
	lister := new(mockLister)
	c := New(lister)

	_, applied, err := c.Refresh(context.Background(), models.FilterCriteria{PriceRange: priceRange("10", "1")})

	assert.ErrorIs(t, err, ErrInvalidCriteria)
	assert.False(t, applied)
	lister.AssertNotCalled(t, "ListTours", mock.Anything, mock.Anything)
}

func TestCatalog_RefreshErrorKeepsPreviousSnapshot(t *testing.T) {
	lister := new(mockLister)
	c := New(lister)
	ctx := context.Background()

	lister.On("ListTours", mock.Anything, mock.MatchedBy(func(q models.TourQuery) bool { return q.Country == "" })).
		Return(pageOf(fixtureTours()), nil).Once()
	lister.On("ListTours", mock.Anything, mock.MatchedBy(func(q models.TourQuery) bool { return q.Country == "Japan" })).
		Return(nil, errors.New("connection refused")).Once()

	first, _, err := c.Refresh(ctx, fullCriteria())
	require.NoError(t, err)

	japan := fullCriteria()
	japan.Country = "Japan"
	snap, applied, err := c.Refresh(ctx, japan)

	assert.Error(t, err)
	assert.False(t, applied)
	assert.Equal(t, first, snap)
}

func TestCatalog_StaleResponseDiscarded(t *testing.T) {
	lister := newGatedLister()
	lister.pages["Turkey"] = pageOf(fixtureTours())
	lister.pages["Japan"] = pageOf(fixtureTours())
	lister.errs["Turkey"] = errors.New("late failure")
	c := New(lister)
	ctx := context.Background()

	slow := fullCriteria()
	slow.Country = "Turkey"
	fast := fullCriteria()
	fast.Country = "Japan"

	type outcome struct {
		snap    Snapshot
		applied bool
		err     error
	}
	slowDone := make(chan outcome, 1)
	go func() {
		snap, applied, err := c.Refresh(ctx, slow)
		slowDone <- outcome{snap, applied, err}
	}()
	require.Equal(t, "Turkey", <-lister.calls)

	fastDone := make(chan outcome, 1)
	go func() {
		snap, applied, err := c.Refresh(ctx, fast)
		fastDone <- outcome{snap, applied, err}
	}()
	require.Equal(t, "Japan", <-lister.calls)

	close(lister.gate("Japan"))
	fastResult := <-fastDone
	require.NoError(t, fastResult.err)
	assert.True(t, fastResult.applied)
	assert.Equal(t, []int64{2}, ids(fastResult.snap.Tours))

	close(lister.gate("Turkey"))
	slowResult := <-slowDone
	assert.NoError(t, slowResult.err)
	assert.False(t, slowResult.applied)
	assert.Equal(t, fastResult.snap, slowResult.snap)

	assert.Equal(t, "Japan", c.Current().Criteria.Country)
	assert.Equal(t, uint64(2), c.Current().Seq)
}
