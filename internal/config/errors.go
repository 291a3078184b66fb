package config

import "errors"

// Configuration validation errors returned by Config.Validate and the
// config file loader.
var (
	// ErrNoQuery is returned when a lookup is requested without a query.
	ErrNoQuery = errors.New("no query specified: provide at least one query")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidRateBurst is returned when rate limiting is on and the burst
	// is not positive.
	ErrInvalidRateBurst = errors.New("invalid rate burst: must be positive")

	// ErrInvalidCacheTTL is returned when the cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidHistoryLimit is returned when the history limit is not positive.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be positive")

	// ErrNoDBDir is returned when history is enabled without a directory.
	ErrNoDBDir = errors.New("history enabled but no database directory configured")

	// ErrInvalidTransform is returned for an unknown transform name in the
	// config file.
	ErrInvalidTransform = errors.New("invalid transform: must be none, digits or upper")

	// ErrInvalidLength is returned when a category's length bounds are
	// negative or inverted.
	ErrInvalidLength = errors.New("invalid length bounds")

	// ErrDuplicateCategory is returned when two category tags in the
	// config file normalize to the same category.
	ErrDuplicateCategory = errors.New("duplicate category")
)
