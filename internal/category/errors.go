package category

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCategory is returned when a tag is not in the registry.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrNoEndpoint is returned when a category has no endpoint configured.
	ErrNoEndpoint = errors.New("no endpoint configured for category")

	// ErrInvalidQuery is wrapped by every ValidationError.
	ErrInvalidQuery = errors.New("invalid query")
)

// ValidationError reports a query rejected by a category's length rules.
// Error returns the category's user-facing message.
type ValidationError struct {
	Category Category
	Message  string
	Length   int
	Min      int
	Max      int
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s query must be %d-%d characters, got %d", e.Category, e.Min, e.Max, e.Length)
}

// Unwrap allows errors.Is(err, ErrInvalidQuery).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidQuery
}
