package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "lookupreport"

	// DefaultTimeout bounds one upstream request. Lookup APIs answer in a
	// few seconds when they answer at all.
	DefaultTimeout = 15 * time.Second

	// DefaultWorkers is the number of concurrent lookups for multi-query runs.
	DefaultWorkers = 4

	// DefaultRateLimit is the number of upstream requests per second shared
	// by all workers. Zero disables the limit.
	DefaultRateLimit = 2.0

	// DefaultRateBurst is the rate limiter bucket size.
	DefaultRateBurst = 1

	// DefaultCacheTTL is how long a successful upstream response is reused
	// for the same category and query. Zero disables the cache.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultUserAgent identifies the tool in upstream requests.
	DefaultUserAgent = "lookupreport/1.0 (+https://github.com/nao1215/lookupreport)"

	// DefaultMaxBodySize limits the response body read from an upstream API.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultHistoryLimit is the number of recent searches shown.
	DefaultHistoryLimit = 5

	// DefaultServerAddr is the listen address of the HTTP API.
	DefaultServerAddr = "127.0.0.1:8080"

	// DBFileName is the history database file inside DBDir.
	DBFileName = "history.db"
)

// Config holds all runtime options. It is populated from CLI flags and the
// config file, then passed down explicitly.
type Config struct {
	// Timeout is the per-request upstream timeout.
	Timeout time.Duration

	// Workers is the number of concurrent lookups.
	Workers int

	// RateLimit is the upstream request rate in requests per second.
	// Zero means unlimited.
	RateLimit float64

	// RateBurst is the number of requests allowed at once.
	RateBurst int

	// CacheTTL is the lifetime of cached upstream responses.
	// Zero disables caching.
	CacheTTL time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form used for
	// all upstream requests.
	ProxyAddress string

	// UserAgent is sent with every upstream request.
	UserAgent string

	// MaxBodySize is the maximum upstream body size in bytes.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit path to the config file. When empty,
	// .lookupreport is searched in the current and home directories.
	ConfigFilePath string

	// File holds the loaded config file, if any.
	File *File

	// JSONReport writes documents as JSON instead of plain text.
	JSONReport bool

	// MarkdownReport writes documents as Markdown instead of plain text.
	MarkdownReport bool

	// ReportFile is the output path. Empty means stdout.
	ReportFile string

	// DBDir is the directory holding the history database.
	DBDir string

	// SaveToDB records every lookup in the history database.
	SaveToDB bool

	// HistoryLimit is the number of recent searches returned.
	HistoryLimit int

	// ServerAddr is the HTTP API listen address.
	ServerAddr string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		Workers:      DefaultWorkers,
		RateLimit:    DefaultRateLimit,
		RateBurst:    DefaultRateBurst,
		CacheTTL:     DefaultCacheTTL,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		DBDir:        XDGDataDir(),
		SaveToDB:     true,
		HistoryLimit: DefaultHistoryLimit,
		ServerAddr:   DefaultServerAddr,
	}
}

// DBPath returns the history database file path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DBDir, DBFileName)
}

// XDGDataDir returns the XDG data directory for lookupreport.
// On Linux: ~/.local/share/lookupreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for lookupreport.
// On Linux: ~/.config/lookupreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for lookupreport.
// On Linux: ~/.cache/lookupreport
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return ErrInvalidRateBurst
	}
	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.HistoryLimit <= 0 {
		return ErrInvalidHistoryLimit
	}
	if c.SaveToDB && c.DBDir == "" {
		return ErrNoDBDir
	}
	return nil
}
