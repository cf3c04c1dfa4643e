// Package client provides the Tour Repository Client: the only way the
// storefront core reaches tour data and booking creation.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
)

// Repository defines the operations the storefront consumes
type Repository interface {
	ListTours(ctx context.Context, query models.TourQuery) (*models.ToursPage, error)
	GetTourByID(ctx context.Context, id int64) (*models.Tour, error)
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResult, error)
	GetFilterOptions(ctx context.Context) (*models.FilterOptions, error)
}

// APIError is a non-2xx response from the catalogue backend
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
}
