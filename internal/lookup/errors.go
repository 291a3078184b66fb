package lookup

import (
	"errors"
	"fmt"

	"github.com/nao1215/lookupreport/internal/category"
)

// UnexpectedErrorMessage is shown to users for transport and decoding
// failures.
const UnexpectedErrorMessage = "An unexpected error occurred. The API might be down or the response is not valid JSON."

var (
	// ErrUpstream is returned when the request could not be completed.
	ErrUpstream = errors.New("upstream request failed")

	// ErrInvalidJSON is returned when the body is not valid JSON.
	ErrInvalidJSON = errors.New("upstream response is not valid JSON")

	// ErrBodyTooLarge is returned when the body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("upstream response body too large")

	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("no data found")

	// ErrInvalidProxyAddress is returned when the proxy address format is
	// invalid. Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// NotFoundError reports an upstream answer without usable data.
type NotFoundError struct {
	Category category.Category
	Query    string
	Status   int

	// Message is the upstream "message" or "error" field, or a default.
	Message string
}

// Error returns the user-facing message.
func (e *NotFoundError) Error() string {
	return e.Message
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func defaultNotFoundMessage(query string) string {
	return fmt.Sprintf("No data found for %s.", query)
}

// UserMessage converts an error from this package or the category registry
// into the text shown to end users.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Message
	}
	var ve *category.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	if errors.Is(err, category.ErrUnknownCategory) || errors.Is(err, category.ErrNoEndpoint) {
		return err.Error()
	}
	return UnexpectedErrorMessage
}
