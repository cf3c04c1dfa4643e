// Package pricing derives booking totals from a tour's unit price.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrOutOfRange   = errors.New("travelers out of range")
	ErrInvalidPrice = errors.New("invalid unit price")
)

// ComputeTotal returns unitPrice × travelers. It never clamps: a traveler
// count outside [1, capacity] or a negative price is an error.
func ComputeTotal(unitPrice decimal.Decimal, travelers, capacity int) (decimal.Decimal, error) {
	if travelers < 1 || travelers > capacity {
		return decimal.Zero, fmt.Errorf("%w: %d not in [1, %d]", ErrOutOfRange, travelers, capacity)
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidPrice, unitPrice)
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(travelers))), nil
}
