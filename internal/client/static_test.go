package client

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

func TestStaticClient_ListTours_Filters(t *testing.T) {
	c := NewStaticClient(SampleTours())
	ctx := context.Background()

	max := decimal.NewFromInt(200)
	page, err := c.ListTours(ctx, models.TourQuery{Country: "Turkey", MaxPrice: &max, PageSize: 50})
	require.NoError(t, err)

	ids := make([]int64, 0, len(page.Tours))
	for _, tour := range page.Tours {
		ids = append(ids, tour.ID)
	}
	assert.Equal(t, []int64{1, 3, 5}, ids)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestStaticClient_ListTours_Pagination(t *testing.T) {
	c := NewStaticClient(SampleTours())

	page, err := c.ListTours(context.Background(), models.TourQuery{Page: 3, PageSize: 4})
	require.NoError(t, err)

	assert.Equal(t, 10, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Tours, 2)
	assert.Equal(t, int64(9), page.Tours[0].ID)

	page, err = c.ListTours(context.Background(), models.TourQuery{Page: 9, PageSize: 4})
	require.NoError(t, err)
	assert.Empty(t, page.Tours)
}

func TestStaticClient_CreateBooking(t *testing.T) {
	c := NewStaticClient(SampleTours())
	ctx := context.Background()

	booking, err := c.CreateBooking(ctx, models.CreateBookingRequest{
		TourID:         3,
		CustomerName:   "Ann",
		CustomerEmail:  "a@b.com",
		CustomerPhone:  "123",
		NumberOfPeople: 4,
		Notes:          "vegetarian",
	})
	require.NoError(t, err)
	assert.Equal(t, "382", booking.TotalPrice.String())
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	require.NotNil(t, booking.Notes)
	assert.Equal(t, "vegetarian", *booking.Notes)

	tour, err := c.GetTourByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, tour.AvailableSlots)
	assert.Len(t, c.Bookings(), 1)
}

func TestStaticClient_CreateBooking_NotEnoughSlots(t *testing.T) {
	c := NewStaticClient(SampleTours())

	_, err := c.CreateBooking(context.Background(), models.CreateBookingRequest{TourID: 4, NumberOfPeople: 7})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Detail, "Only 6 slots left")
	assert.Empty(t, c.Bookings())
}

func TestStaticClient_GetTourByID_NotFound(t *testing.T) {
	_, err := NewStaticClient(SampleTours()).GetTourByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaticClient_GetFilterOptions(t *testing.T) {
	opts, err := NewStaticClient(SampleTours()).GetFilterOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Greece", "Iceland", "Indonesia", "Japan", "Morocco", "Portugal", "Switzerland", "Turkey"}, opts.Countries)
	assert.Equal(t, "95.5", opts.MinPrice.String())
	assert.Equal(t, "1450", opts.MaxPrice.String())
}
