package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
	"github.com/tazabekov/tour-booking-room-2/internal/service"
)

// TourWatcher serves live slot updates for a tour over a websocket
type TourWatcher interface {
	ServeWs(w http.ResponseWriter, r *http.Request, tourID int64)
}

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	watcher        TourWatcher
	version        string
	logger         *slog.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService, watcher TourWatcher, version string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		bookingService: bookingService,
		watcher:        watcher,
		version:        version,
		logger:         logger,
	}
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail string                  `json:"detail"`
	Fields models.ValidationResult `json:"fields,omitempty"`
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Detail: message})
}

// respondServiceError maps service errors onto status codes
func (h *Handler) respondServiceError(w http.ResponseWriter, err error, notFound string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid booking request", Fields: vErr.Fields})
	case errors.Is(err, service.ErrNotEnoughSlots):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, notFound)
	default:
		h.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ListTours handles GET /api/v1/tours
func (h *Handler) ListTours(w http.ResponseWriter, r *http.Request) {
	query, err := parseTourQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.bookingService.ListTours(r.Context(), query)
	if err != nil {
		h.respondServiceError(w, err, "Tour not found")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GetFilterOptions handles GET /api/v1/tours/filters
func (h *Handler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.bookingService.GetFilterOptions(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "Not found")
		return
	}
	respondJSON(w, http.StatusOK, opts)
}

// GetTour handles GET /api/v1/tours/{id}
func (h *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tour, err := h.bookingService.GetTour(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Tour not found")
		return
	}
	respondJSON(w, http.StatusOK, tour)
}

// WatchTour handles GET /api/v1/tours/{id}/ws
func (h *Handler) WatchTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.bookingService.GetTour(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "Tour not found")
		return
	}
	h.watcher.ServeWs(w, r, id)
}

// CreateBooking handles POST /api/v1/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TourID <= 0 {
		respondError(w, http.StatusBadRequest, "Tour ID is required")
		return
	}

	booking, err := h.bookingService.CreateBooking(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "Tour not found")
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

// GetBooking handles GET /api/v1/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Booking not found")
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// ListBookings handles GET /api/v1/bookings?email=
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingService.GetBookingsByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.respondServiceError(w, err, "Booking not found")
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// parseTourQuery reads listing filters from the query string. Empty values are ignored.
func parseTourQuery(r *http.Request) (models.TourQuery, error) {
	q := r.URL.Query()
	var query models.TourQuery
	var err error

	if query.Page, err = pageParam(q, "page"); err != nil {
		return query, fmt.Errorf("invalid page: %w", err)
	}
	if query.PageSize, err = pageParam(q, "page_size"); err != nil {
		return query, fmt.Errorf("invalid page_size: %w", err)
	}
	query.Country = q.Get("country")

	if query.MinPrice, err = decimalParam(q.Get("min_price")); err != nil {
		return query, fmt.Errorf("invalid min_price: %w", err)
	}
	if query.MaxPrice, err = decimalParam(q.Get("max_price")); err != nil {
		return query, fmt.Errorf("invalid max_price: %w", err)
	}
	if query.StartDate, err = dateParam(q.Get("start_date")); err != nil {
		return query, fmt.Errorf("invalid start_date: %w", err)
	}
	if query.EndDate, err = dateParam(q.Get("end_date")); err != nil {
		return query, fmt.Errorf("invalid end_date: %w", err)
	}
	return query, nil
}

// pageParam returns 0 when the parameter is absent, which the service
// treats as its default. A value given explicitly must be at least 1.
func pageParam(q url.Values, key string) (int, error) {
	if !q.Has(key) {
		return 0, nil
	}
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	return n, nil
}

func decimalParam(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func dateParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", s)
}
