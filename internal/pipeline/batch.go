package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/model"
)

// DefaultConcurrency is the number of concurrent lookups when none is set.
const DefaultConcurrency = 4

// BatchProcessor runs several lookups concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each lookup.
	pipelineFactory func() *Pipeline

	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent lookups.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch looks up every query in category c and returns the lookups
// in input order, including failed ones. When ctx is cancelled the error is
// returned and lookups that never started are left nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, c category.Category, queries []string) ([]*model.Lookup, error) {
	results := make([]*model.Lookup, len(queries))
	err := bp.ProcessBatchWithCallback(ctx, c, queries, func(l *model.Lookup, i int) {
		results[i] = l
	})
	return results, err
}

// ProcessBatchWithCallback looks up every query and calls callback as each
// lookup completes. The callback runs on the worker goroutine and must be
// safe for concurrent use when it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	c category.Category,
	queries []string,
	callback func(l *model.Lookup, index int),
) error {
	bp.logger.Debug("starting batch",
		"category", c,
		"total", len(queries),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, query := range queries {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			l := model.NewLookup(c, query)
			if err := bp.pipelineFactory().Execute(ctx, l); err != nil {
				bp.logger.Debug("lookup stopped",
					"category", c,
					"query", query,
					"index", i+1,
					"error", err,
				)
			}

			callback(l, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch complete",
		"category", c,
		"total", len(queries),
		"elapsed", time.Since(startTime),
	)
	return err
}
