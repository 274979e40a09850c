package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidRate      = errors.New("depreciation rate must be between 0 and 100")
	ErrInvalidAccountID = errors.New("invalid account ID")
)

// Validation constants
const (
	MaxAssetNameLength = 255
	MinAssetNameLength = 1
	MaxAccountIDLength = 64
	MaxNotesLength     = 2000
)

var maxDepreciationRate = decimal.NewFromInt(100)

// ValidateAssetName validates asset name
func ValidateAssetName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAssetNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAssetName)
	}

	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAssetName, MaxAssetNameLength)
	}

	return nil
}

// ValidateDepreciationRate validates an annual depreciation percentage.
func ValidateDepreciationRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(maxDepreciationRate) {
		return fmt.Errorf("%w: got %s", ErrInvalidRate, rate.String())
	}

	return nil
}

// ValidateAccountID validates a chart-of-accounts identifier.
func ValidateAccountID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidAccountID)
	}

	if len(id) > MaxAccountIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidAccountID, MaxAccountIDLength)
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
