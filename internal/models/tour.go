package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching the catalogue API.
	decimal.MarshalJSONWithoutQuotes = true
}

// Tour represents a purchasable travel package
type Tour struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Country        string          `json:"country"`
	City           string          `json:"city"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	DurationDays   int             `json:"duration_days"`
	MaxPeople      int             `json:"max_people"`
	AvailableSlots int             `json:"available_slots"`
	ImageURL       string          `json:"image_url"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Capacity is the maximum number of travelers a single booking may carry.
func (t Tour) Capacity() int {
	return t.MaxPeople
}

// ToursPage is one page of the tour listing
type ToursPage struct {
	Tours      []Tour `json:"tours"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// TourQuery holds the server-side listing filters. Nil bounds are not applied.
type TourQuery struct {
	Page      int
	PageSize  int
	Country   string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	StartDate *time.Time
	EndDate   *time.Time
}

// FilterOptions are the bounds used to seed default filter criteria
type FilterOptions struct {
	Countries []string        `json:"countries"`
	MinPrice  decimal.Decimal `json:"min_price"`
	MaxPrice  decimal.Decimal `json:"max_price"`
}
