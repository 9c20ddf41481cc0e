package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the store and mapped onto the result
// envelope by the dispatcher layer.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// InsufficientStockError reports a requested quantity above availability.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d", e.ProductName, e.Available)
}

// AmbiguousProductError reports a fuzzy name that matched more than one
// product. The assistant asks the user to disambiguate instead of picking
// an arbitrary row.
type AmbiguousProductError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousProductError) Error() string {
	return fmt.Sprintf("product name %q is ambiguous, matches: %s", e.Query, strings.Join(e.Candidates, ", "))
}
