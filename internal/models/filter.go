package models

import "github.com/shopspring/decimal"

// AnyCountry disables the country criterion.
const AnyCountry = ""

// PriceRange is an inclusive [Low, High] price interval
type PriceRange struct {
	Low  decimal.Decimal `json:"low"`
	High decimal.Decimal `json:"high"`
}

// Contains reports whether p lies within the range, both ends inclusive.
func (r PriceRange) Contains(p decimal.Decimal) bool {
	return p.GreaterThanOrEqual(r.Low) && p.LessThanOrEqual(r.High)
}

// FilterCriteria narrows the visible tour list. It is a value: callers
// replace it wholesale on every interaction.
type FilterCriteria struct {
	Country     string     `json:"country"`
	PriceRange  PriceRange `json:"price_range"`
	SearchQuery string     `json:"search_query"`
}
