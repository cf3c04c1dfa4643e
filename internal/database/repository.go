package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotEnoughSlots = errors.New("not enough available slots")
)

// SlotsError reports how many slots were left when a booking did not fit.
type SlotsError struct {
	Available int
}

func (e *SlotsError) Error() string {
	return fmt.Sprintf("Not enough available slots. Only %d slots left", e.Available)
}

func (e *SlotsError) Is(target error) bool {
	return target == ErrNotEnoughSlots
}

// Repository handles all database operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tourColumns = `id, title, country, city, description, price, duration_days, max_people,
		       available_slots, COALESCE(image_url, ''), start_date, end_date, created_at, updated_at`

const bookingColumns = `id, tour_id, customer_name, customer_email, customer_phone, number_of_people,
		       total_price, booking_date, status, notes, created_at`

// --- Tour Operations ---

// ListTours returns one page of tours matching query and the total match count
func (r *Repository) ListTours(ctx context.Context, query models.TourQuery) ([]models.Tour, int, error) {
	where, args := tourFilters(query)

	var total int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tours"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tours: %w", err)
	}

	page, size := query.Page, query.PageSize
	args = append(args, size, (page-1)*size)
	sql := fmt.Sprintf(`SELECT %s FROM tours%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		tourColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query tours: %w", err)
	}
	defer rows.Close()

	tours := []models.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tour: %w", err)
		}
		tours = append(tours, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate tours: %w", err)
	}

	return tours, total, nil
}

// tourFilters builds the WHERE clause for a listing query. Country matches exactly.
func tourFilters(query models.TourQuery) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if query.Country != "" {
		add("country = $%d", query.Country)
	}
	if query.MinPrice != nil {
		add("price >= $%d", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		add("price <= $%d", *query.MaxPrice)
	}
	if query.StartDate != nil {
		add("start_date >= $%d", *query.StartDate)
	}
	if query.EndDate != nil {
		add("end_date <= $%d", *query.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// GetTourByID returns a tour by ID
func (r *Repository) GetTourByID(ctx context.Context, id int64) (*models.Tour, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+tourColumns+" FROM tours WHERE id = $1", id)
	t, err := scanTour(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	return t, nil
}

// GetFilterOptions returns the distinct countries and the catalogue price bounds
func (r *Repository) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	rows, err := r.pool.Query(ctx, "SELECT DISTINCT country FROM tours ORDER BY country")
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}
	countries, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan countries: %w", err)
	}

	opts := &models.FilterOptions{Countries: countries}
	err = r.pool.QueryRow(ctx, "SELECT COALESCE(MIN(price), 0), COALESCE(MAX(price), 0) FROM tours").
		Scan(&opts.MinPrice, &opts.MaxPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to query price bounds: %w", err)
	}

	return opts, nil
}

// --- Booking Operations ---

// CreateBooking stores a confirmed booking and takes its travelers off the
// tour's available slots in one transaction. The request ID makes the call
// idempotent: repeating it returns the booking already stored for that ID
// without touching the slots again.
func (r *Repository) CreateBooking(ctx context.Context, requestID string, req models.CreateBookingRequest, totalPrice decimal.Decimal) (*models.BookingResult, error) {
	if requestID == "" {
		return nil, errors.New("request ID is required")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var available int
	err = tx.QueryRow(ctx, "SELECT available_slots FROM tours WHERE id = $1 FOR UPDATE", req.TourID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock tour: %w", err)
	}

	// The tour row lock serializes attempts of the same request.
	existing, err := scanBooking(tx.QueryRow(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE request_id = $1", requestID))
	switch {
	case err == nil:
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit booking: %w", err)
		}
		return existing, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("failed to look up request: %w", err)
	}

	if available < req.NumberOfPeople {
		return nil, &SlotsError{Available: available}
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO bookings (request_id, tour_id, customer_name, customer_email, customer_phone,
		                      number_of_people, total_price, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+bookingColumns,
		requestID, req.TourID, req.CustomerName, req.CustomerEmail, req.CustomerPhone,
		req.NumberOfPeople, totalPrice, models.BookingStatusConfirmed, notes,
	)
	b, err := scanBooking(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE tours
		SET available_slots = available_slots - $1, updated_at = NOW()
		WHERE id = $2
	`, req.NumberOfPeople, req.TourID)
	if err != nil {
		return nil, fmt.Errorf("failed to update available slots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return b, nil
}

// GetBookingByID returns a booking by ID
func (r *Repository) GetBookingByID(ctx context.Context, id int64) (*models.BookingResult, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = $1", id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// GetBookingsByEmail returns a customer's bookings, newest first
func (r *Repository) GetBookingsByEmail(ctx context.Context, email string) ([]models.BookingResult, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE customer_email = $1 ORDER BY created_at DESC, id DESC", email)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.BookingResult{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}

// Ping checks the connection pool
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanTour(row pgx.Row) (*models.Tour, error) {
	var t models.Tour
	err := row.Scan(
		&t.ID, &t.Title, &t.Country, &t.City, &t.Description, &t.Price,
		&t.DurationDays, &t.MaxPeople, &t.AvailableSlots, &t.ImageURL,
		&t.StartDate, &t.EndDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanBooking(row pgx.Row) (*models.BookingResult, error) {
	var b models.BookingResult
	err := row.Scan(
		&b.ID, &b.TourID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone,
		&b.NumberOfPeople, &b.TotalPrice, &b.BookingDate, &b.Status, &b.Notes, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
