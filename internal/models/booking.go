package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingDraft is an in-progress booking request, editable until submitted
type BookingDraft struct {
	TourID        int64  `json:"tourId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	Travelers     int    `json:"travelers"`
	Notes         string `json:"notes,omitempty"`
}

// Request converts the draft into the booking creation payload.
func (d BookingDraft) Request() CreateBookingRequest {
	return CreateBookingRequest{
		TourID:         d.TourID,
		CustomerName:   strings.TrimSpace(d.CustomerName),
		CustomerEmail:  strings.TrimSpace(d.CustomerEmail),
		CustomerPhone:  strings.TrimSpace(d.CustomerPhone),
		NumberOfPeople: d.Travelers,
		Notes:          strings.TrimSpace(d.Notes),
	}
}

// CreateBookingRequest represents a request to create a new booking
type CreateBookingRequest struct {
	TourID         int64  `json:"tour_id"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	CustomerPhone  string `json:"customer_phone"`
	NumberOfPeople int    `json:"number_of_people"`
	Notes          string `json:"notes,omitempty"`
}

// Draft converts the wire request back into a draft for validation.
func (r CreateBookingRequest) Draft() BookingDraft {
	return BookingDraft{
		TourID:        r.TourID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		Travelers:     r.NumberOfPeople,
		Notes:         r.Notes,
	}
}

// BookingResult is a server-confirmed booking. Immutable once created.
type BookingResult struct {
	ID             int64           `json:"id"`
	TourID         int64           `json:"tour_id"`
	CustomerName   string          `json:"customer_name"`
	CustomerEmail  string          `json:"customer_email"`
	CustomerPhone  string          `json:"customer_phone"`
	NumberOfPeople int             `json:"number_of_people"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	BookingDate    time.Time       `json:"booking_date"`
	Status         BookingStatus   `json:"status"`
	Notes          *string         `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
}
