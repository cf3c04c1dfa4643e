package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

// DefaultPageSize is the largest page the catalogue API serves.
const DefaultPageSize = 100

// TourLister is the slice of the repository client the catalog needs
type TourLister interface {
	ListTours(ctx context.Context, query models.TourQuery) (*models.ToursPage, error)
}

// Snapshot is the visible tour list for one applied fetch
type Snapshot struct {
	Seq         uint64
	Criteria    models.FilterCriteria
	Tours       []models.Tour
	ServerTotal int
}

// Catalog re-queries the repository on every criteria change. Each fetch is
// tagged with a sequence number and only the most recently issued one may
// replace the visible list.
type Catalog struct {
	lister   TourLister
	pageSize int
	logger   *slog.Logger

	mu      sync.Mutex
	issued  uint64
	current Snapshot
}

// Option configures a Catalog
type Option func(*Catalog)

func WithPageSize(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Catalog backed by lister
func New(lister TourLister, opts ...Option) *Catalog {
	c := &Catalog{
		lister:   lister,
		pageSize: DefaultPageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh fetches tours for criteria and applies them if no later Refresh
// was issued meanwhile. The returned bool reports whether this call's result
// was applied; a superseded call returns the current snapshot and a nil
// error, even if its own fetch failed.
func (c *Catalog) Refresh(ctx context.Context, criteria models.FilterCriteria) (Snapshot, bool, error) {
	if err := ValidateCriteria(criteria); err != nil {
		return c.Current(), false, err
	}

	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	page, err := c.lister.ListTours(ctx, Query(criteria, c.pageSize))

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.issued {
		c.logger.Debug("discarding stale tour fetch", "seq", seq, "latest", c.issued)
		return c.current, false, nil
	}
	if err != nil {
		return c.current, false, err
	}

	visible, err := Filter(page.Tours, criteria)
	if err != nil {
		return c.current, false, err
	}

	c.current = Snapshot{
		Seq:         seq,
		Criteria:    criteria,
		Tours:       visible,
		ServerTotal: page.Total,
	}
	return c.current, true, nil
}

// Current returns the last applied snapshot.
func (c *Catalog) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
