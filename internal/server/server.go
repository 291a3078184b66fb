package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/history"
	"github.com/nao1215/lookupreport/internal/pipeline"
	"github.com/nao1215/lookupreport/internal/report"
)

// Defaults for the HTTP layer.
const (
	DefaultRateLimit    = 10
	DefaultRateBurst    = 5
	DefaultCacheTTL     = 5 * time.Minute
	DefaultHistoryLimit = 5

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// History is the read side of the search history. *history.Store
// implements it.
type History interface {
	Recent(ctx context.Context, limit int) ([]history.Search, error)
	Stats(ctx context.Context) (history.Stats, error)
}

// Server serves the HTTP API.
type Server struct {
	engine       *report.Engine
	registry     *category.Registry
	newPipeline  func() *pipeline.Pipeline
	history      History
	logger       *slog.Logger
	rateLimit    rate.Limit
	rateBurst    int
	cacheTTL     time.Duration
	historyLimit int
}

// Option configures a Server.
type Option func(*Server)

// WithEngine sets the report engine.
func WithEngine(e *report.Engine) Option {
	return func(s *Server) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithRegistry sets the category registry.
func WithRegistry(r *category.Registry) Option {
	return func(s *Server) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithLookup enables GET /v1/lookup. factory must return a fresh pipeline
// for every request.
func WithLookup(factory func() *pipeline.Pipeline) Option {
	return func(s *Server) {
		s.newPipeline = factory
	}
}

// WithHistory enables the history and stats routes.
func WithHistory(h History) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRateLimit sets the per-IP request rate and burst.
func WithRateLimit(r float64, burst int) Option {
	return func(s *Server) {
		if r > 0 {
			s.rateLimit = rate.Limit(r)
		}
		if burst > 0 {
			s.rateBurst = burst
		}
	}
}

// WithCacheTTL sets how long the category list is cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithHistoryLimit sets the default number of searches returned by
// GET /v1/history.
func WithHistoryLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		engine:       report.NewEngine(),
		registry:     category.DefaultRegistry(),
		logger:       slog.Default(),
		rateLimit:    DefaultRateLimit,
		rateBurst:    DefaultRateBurst,
		cacheTTL:     DefaultCacheTTL,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	caching := responseCache(cache.New(s.cacheTTL, 2*s.cacheTTL), s.cacheTTL)

	v1 := r.Group("/v1")
	v1.Use(rateLimit(s.rateLimit, s.rateBurst))
	{
		v1.POST("/render", s.render)
		v1.POST("/explain", s.explain)
		v1.GET("/categories", caching, s.categories)
		v1.GET("/lookup/:category/:query", s.lookup)
		v1.GET("/history", s.recent)
		v1.GET("/stats", s.stats)
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
