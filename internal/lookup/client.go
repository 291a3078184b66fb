package lookup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/config"
	"github.com/nao1215/lookupreport/internal/payload"
)

// cacheCleanupInterval is how often expired responses are evicted.
const cacheCleanupInterval = 10 * time.Minute

// Result is one upstream answer.
type Result struct {
	Category category.Category
	Query    string
	URL      string
	Status   int

	// Found reports whether Payload holds usable data.
	Found bool

	// Payload is the decoded body. It is Null when the body was empty.
	Payload payload.Value

	// Cached reports whether the result came from the response cache.
	Cached bool

	// Elapsed is the time spent on the request, zero for cache hits.
	Elapsed time.Duration
}

// Client fetches lookup responses. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	cache       *cache.Cache
	cacheTTL    time.Duration
	maxBodySize int64
	userAgent   string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Header injection still applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client from cfg. Default headers from the config file
// are sent with every request.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	hc, err := newHTTPClient(cfg.ProxyAddress, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpClient:  hc,
		cacheTTL:    cfg.CacheTTL,
		maxBodySize: cfg.MaxBodySize,
		userAgent:   cfg.UserAgent,
		logger:      slog.Default(),
	}
	if c.maxBodySize == 0 {
		c.maxBodySize = config.DefaultMaxBodySize
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, cacheCleanupInterval)
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.File != nil && len(cfg.File.Defaults.Headers) > 0 {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *c.httpClient
		wrapped.Transport = &headerInjectingTransport{base: base, headers: cfg.File.Defaults.Headers}
		c.httpClient = &wrapped
	}

	return c, nil
}

// CachedItems returns the number of responses currently cached.
func (c *Client) CachedItems() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.ItemCount()
}

// Fetch requests query from the endpoint of spec.
//
// It returns ErrNoEndpoint when the category has no endpoint, an error
// wrapping ErrUpstream or ErrInvalidJSON on failure, and a *NotFoundError
// together with the non-nil Result when the upstream has no data.
func (c *Client) Fetch(ctx context.Context, spec category.Spec, query string) (*Result, error) {
	target, err := spec.URL(query)
	if err != nil {
		return nil, err
	}

	key := cacheKey(spec.Category, query)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			hit := *v.(*Result)
			hit.Cached = true
			hit.Elapsed = 0
			c.logger.Debug("cache hit", "category", spec.Category, "query", query)
			return &hit, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
	}

	start := time.Now()
	status, body, err := c.get(ctx, target, spec.Headers)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("upstream request failed", "category", spec.Category, "url", target, "error", err)
		return nil, err
	}

	res := &Result{
		Category: spec.Category,
		Query:    query,
		URL:      target,
		Status:   status,
		Elapsed:  elapsed,
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return res, notFound(res, payload.Null())
	}

	v, err := payload.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	res.Payload = v

	if status < 200 || status > 299 || !v.Truthy() || payload.IsNoData(v) || v.Field("error").Truthy() {
		return res, notFound(res, v)
	}

	res.Found = true
	c.logger.Debug("upstream response",
		"category", spec.Category, "query", query, "status", status, "elapsed", elapsed)

	if c.cache != nil {
		stored := *res
		c.cache.Set(key, &stored, c.cacheTTL)
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, target string, headers map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if int64(len(body)) > c.maxBodySize {
		return 0, nil, fmt.Errorf("%w: %w: limit %d bytes", ErrUpstream, ErrBodyTooLarge, c.maxBodySize)
	}
	return resp.StatusCode, body, nil
}

// notFound builds the error for an answer without data, taking the message
// from the "message" field, then "error", then a default.
func notFound(res *Result, v payload.Value) error {
	msg := defaultNotFoundMessage(res.Query)
	for _, key := range []string{"message", "error"} {
		if f := v.Field(key); f.Truthy() {
			msg = f.Text()
			break
		}
	}
	return &NotFoundError{
		Category: res.Category,
		Query:    res.Query,
		Status:   res.Status,
		Message:  msg,
	}
}

func cacheKey(c category.Category, query string) string {
	return string(c) + "\x00" + query
}

// IsNotFound reports whether err is a not-found answer.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
