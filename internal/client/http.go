package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:8080/api/v1"
	DefaultTimeout = 10 * time.Second
)

// HTTPClient talks to the catalogue API over HTTP
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// NewHTTPClient creates a client for the API rooted at baseURL
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, readDetail(resp.Body, resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body, resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readDetail(r io.Reader, status int) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil || payload.Detail == "" {
		return fmt.Sprintf("HTTP error %d", status)
	}
	return payload.Detail
}

// ListTours calls GET /tours with the server-side filters
func (c *HTTPClient) ListTours(ctx context.Context, query models.TourQuery) (*models.ToursPage, error) {
	params := url.Values{}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(query.PageSize))
	}
	if query.Country != "" {
		params.Set("country", query.Country)
	}
	if query.MinPrice != nil {
		params.Set("min_price", query.MinPrice.String())
	}
	if query.MaxPrice != nil {
		params.Set("max_price", query.MaxPrice.String())
	}
	if query.StartDate != nil {
		params.Set("start_date", query.StartDate.Format(time.RFC3339))
	}
	if query.EndDate != nil {
		params.Set("end_date", query.EndDate.Format(time.RFC3339))
	}

	endpoint := "/tours"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var page models.ToursPage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTourByID calls GET /tours/{id}
func (c *HTTPClient) GetTourByID(ctx context.Context, id int64) (*models.Tour, error) {
	var tour models.Tour
	if err := c.do(ctx, http.MethodGet, "/tours/"+strconv.FormatInt(id, 10), nil, &tour); err != nil {
		return nil, err
	}
	return &tour, nil
}

// CreateBooking calls POST /bookings
func (c *HTTPClient) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResult, error) {
	var booking models.BookingResult
	if err := c.do(ctx, http.MethodPost, "/bookings", req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetFilterOptions calls GET /tours/filters
func (c *HTTPClient) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	var opts models.FilterOptions
	if err := c.do(ctx, http.MethodGet, "/tours/filters", nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}
