package client

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
	"github.com/tazabekov/tour-booking-room-2/internal/pricing"
)

// DefaultPageSize is used when a query does not set one
const DefaultPageSize = 10

// StaticClient serves a fixed in-memory tour list. Bookings decrement the
// in-memory slot counts and are kept for the lifetime of the client.
type StaticClient struct {
	mu       sync.Mutex
	tours    []models.Tour
	bookings []models.BookingResult
	nextID   int64
	now      func() time.Time
}

// NewStaticClient creates a client over a copy of tours
func NewStaticClient(tours []models.Tour) *StaticClient {
	cp := make([]models.Tour, len(tours))
	copy(cp, tours)
	return &StaticClient{tours: cp, nextID: 1, now: time.Now}
}

func (c *StaticClient) ListTours(ctx context.Context, query models.TourQuery) (*models.ToursPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	matched := make([]models.Tour, 0, len(c.tours))
	for _, t := range c.tours {
		if query.Country != "" && t.Country != query.Country {
			continue
		}
		if query.MinPrice != nil && t.Price.LessThan(*query.MinPrice) {
			continue
		}
		if query.MaxPrice != nil && t.Price.GreaterThan(*query.MaxPrice) {
			continue
		}
		if query.StartDate != nil && t.StartDate.Before(*query.StartDate) {
			continue
		}
		if query.EndDate != nil && t.EndDate.After(*query.EndDate) {
			continue
		}
		matched = append(matched, t)
	}

	page, size := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}

	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	totalPages := 0
	if len(matched) > 0 {
		totalPages = int(math.Ceil(float64(len(matched)) / float64(size)))
	}

	return &models.ToursPage{
		Tours:      matched[start:end],
		Total:      len(matched),
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}, nil
}

func (c *StaticClient) GetTourByID(ctx context.Context, id int64) (*models.Tour, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.tours {
		if t.ID == id {
			tour := t
			return &tour, nil
		}
	}
	return nil, fmt.Errorf("%w: tour %d", ErrNotFound, id)
}

func (c *StaticClient) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i := range c.tours {
		if c.tours[i].ID == req.TourID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: tour %d", ErrNotFound, req.TourID)
	}

	tour := &c.tours[idx]
	if tour.AvailableSlots < req.NumberOfPeople {
		return nil, &APIError{
			StatusCode: 400,
			Detail:     fmt.Sprintf("Not enough available slots. Only %d slots left", tour.AvailableSlots),
		}
	}

	total, err := pricing.ComputeTotal(tour.Price, req.NumberOfPeople, tour.MaxPeople)
	if err != nil {
		return nil, &APIError{StatusCode: 400, Detail: err.Error()}
	}

	now := c.now()
	booking := models.BookingResult{
		ID:             c.nextID,
		TourID:         tour.ID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		NumberOfPeople: req.NumberOfPeople,
		TotalPrice:     total,
		BookingDate:    now,
		Status:         models.BookingStatusConfirmed,
		CreatedAt:      now,
	}
	if req.Notes != "" {
		notes := req.Notes
		booking.Notes = &notes
	}

	c.nextID++
	tour.AvailableSlots -= req.NumberOfPeople
	c.bookings = append(c.bookings, booking)

	return &booking, nil
}

func (c *StaticClient) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := &models.FilterOptions{Countries: []string{}, MinPrice: decimal.Zero, MaxPrice: decimal.Zero}
	seen := make(map[string]bool)
	for i, t := range c.tours {
		if !seen[t.Country] {
			seen[t.Country] = true
			opts.Countries = append(opts.Countries, t.Country)
		}
		if i == 0 || t.Price.LessThan(opts.MinPrice) {
			opts.MinPrice = t.Price
		}
		if i == 0 || t.Price.GreaterThan(opts.MaxPrice) {
			opts.MaxPrice = t.Price
		}
	}
	sort.Strings(opts.Countries)
	return opts, nil
}

// Bookings returns the bookings created so far.
func (c *StaticClient) Bookings() []models.BookingResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.BookingResult, len(c.bookings))
	copy(out, c.bookings)
	return out
}
