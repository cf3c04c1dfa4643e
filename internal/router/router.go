package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tazabekov/tour-booking-room-2/internal/handlers"
)

// ServiceName labels server spans
const ServiceName = "tour-api"

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler) *mux.Router {
	r := mux.NewRouter()

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Tours
	handle(api, "/tours", h.ListTours, http.MethodGet)
	handle(api, "/tours/filters", h.GetFilterOptions, http.MethodGet)
	api.HandleFunc("/tours/{id:[0-9]+}", h.GetTour).Methods(http.MethodGet)

	// WebSocket for live slot updates
	api.HandleFunc("/tours/{id:[0-9]+}/ws", h.WatchTour).Methods(http.MethodGet)

	// Bookings
	handle(api, "/bookings", h.CreateBooking, http.MethodPost)
	handle(api, "/bookings", h.ListBookings, http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", h.GetBooking).Methods(http.MethodGet)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

// handle registers path with and without a trailing slash so neither form redirects.
func handle(r *mux.Router, path string, fn http.HandlerFunc, method string) {
	r.HandleFunc(path, fn).Methods(method)
	r.HandleFunc(path+"/", fn).Methods(method)
}

// NewHandler wraps the router with CORS and tracing
func NewHandler(h *handlers.Handler, allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return otelhttp.NewHandler(c.Handler(SetupRouter(h)), ServiceName)
}
