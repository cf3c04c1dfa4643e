// Package catalog narrows the tour list by country, price range and
// free-text query.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

var (
	ErrInvalidCriteria = errors.New("invalid filter criteria")
)

// ValidateCriteria rejects an inverted price range. Inverted ranges are
// never swapped. A negative lower bound is a valid, wider range.
func ValidateCriteria(c models.FilterCriteria) error {
	low, high := c.PriceRange.Low, c.PriceRange.High
	if low.GreaterThan(high) {
		return fmt.Errorf("%w: lower bound %s above upper bound %s", ErrInvalidCriteria, low, high)
	}
	return nil
}

// Filter returns the tours matching every criterion, in input order.
// The input slice is not modified.
func Filter(tours []models.Tour, criteria models.FilterCriteria) ([]models.Tour, error) {
	if err := ValidateCriteria(criteria); err != nil {
		return nil, err
	}

	query := normalizeQuery(criteria.SearchQuery)
	out := make([]models.Tour, 0, len(tours))
	for _, t := range tours {
		if matches(t, criteria, query) {
			out = append(out, t)
		}
	}
	return out, nil
}

func matches(t models.Tour, c models.FilterCriteria, query string) bool {
	if c.Country != models.AnyCountry && t.Country != c.Country {
		return false
	}
	if !c.PriceRange.Contains(t.Price) {
		return false
	}
	if query == "" {
		return true
	}
	for _, field := range []string{t.Title, t.Country, t.City, t.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// DefaultCriteria seeds criteria from the catalogue bounds: any country,
// the full price range and no search text.
func DefaultCriteria(opts models.FilterOptions) models.FilterCriteria {
	return models.FilterCriteria{
		Country: models.AnyCountry,
		PriceRange: models.PriceRange{
			Low:  opts.MinPrice,
			High: opts.MaxPrice,
		},
	}
}

// Query translates criteria into the server-side listing query. Free-text
// search has no server-side counterpart and is applied by Filter.
func Query(c models.FilterCriteria, pageSize int) models.TourQuery {
	low, high := c.PriceRange.Low, c.PriceRange.High
	return models.TourQuery{
		Page:     1,
		PageSize: pageSize,
		Country:  c.Country,
		MinPrice: &low,
		MaxPrice: &high,
	}
}
