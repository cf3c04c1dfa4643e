package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

func TestTourFilters(t *testing.T) {
	low := decimal.RequireFromString("100")
	high := decimal.RequireFromString("500.50")
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no filters", func(t *testing.T) {
		where, args := tourFilters(models.TourQuery{Page: 1, PageSize: 10})
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("all filters in order", func(t *testing.T) {
		end := start.AddDate(0, 1, 0)
		where, args := tourFilters(models.TourQuery{
			Country:   "Turkey",
			MinPrice:  &low,
			MaxPrice:  &high,
			StartDate: &start,
			EndDate:   &end,
		})
		assert.Equal(t, " WHERE country = $1 AND price >= $2 AND price <= $3 AND start_date >= $4 AND end_date <= $5", where)
		assert.Equal(t, []any{"Turkey", low, high, start, end}, args)
	})

	t.Run("price only", func(t *testing.T) {
		where, args := tourFilters(models.TourQuery{MaxPrice: &high})
		assert.Equal(t, " WHERE price <= $1", where)
		assert.Equal(t, []any{high}, args)
	})
}

func TestSlotsError(t *testing.T) {
	err := &SlotsError{Available: 2}
	assert.ErrorIs(t, err, ErrNotEnoughSlots)
	assert.Equal(t, "Not enough available slots. Only 2 slots left", err.Error())
}
