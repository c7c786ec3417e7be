package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrQuantityTooLarge   = errors.New("quantity exceeds maximum allowed")
	ErrTooManyLines       = errors.New("document has too many lines")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxLineQuantity      = "1000000000" // 1 billion units
	MaxLinesPerDocument  = 1000
)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateQuantity validates a line quantity
func ValidateQuantity(q decimal.Decimal) error {
	if q.IsNegative() {
		return ErrInvalidQuantity
	}

	maxQty, _ := decimal.NewFromString(MaxLineQuantity)
	if q.GreaterThan(maxQty) {
		return fmt.Errorf("%w: maximum quantity is %s", ErrQuantityTooLarge, MaxLineQuantity)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
