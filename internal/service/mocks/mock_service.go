package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) ListTours(ctx context.Context, query models.TourQuery) (*models.ToursPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ToursPage), args.Error(1)
}

func (m *MockBookingService) GetTour(ctx context.Context, id int64) (*models.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tour), args.Error(1)
}

func (m *MockBookingService) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FilterOptions), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResult), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id int64) (*models.BookingResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResult), args.Error(1)
}

func (m *MockBookingService) GetBookingsByEmail(ctx context.Context, email string) ([]models.BookingResult, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookingResult), args.Error(1)
}
