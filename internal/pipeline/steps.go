package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/history"
	"github.com/nao1215/lookupreport/internal/lookup"
	"github.com/nao1215/lookupreport/internal/model"
	"github.com/nao1215/lookupreport/internal/report"
)

// Step names.
const (
	StepValidate = "validate"
	StepFetch    = "fetch"
	StepRender   = "render"
	StepRecord   = "record"
)

// ValidateStep resolves the category and normalises the query.
type ValidateStep struct {
	registry *category.Registry
}

// NewValidateStep creates a ValidateStep. A nil registry selects the
// built-in categories.
func NewValidateStep(registry *category.Registry) *ValidateStep {
	if registry == nil {
		registry = category.DefaultRegistry()
	}
	return &ValidateStep{registry: registry}
}

// Name returns the step name.
func (s *ValidateStep) Name() string { return StepValidate }

// Do looks up the category, applies its transform and checks the length.
// Failures mark the lookup invalid and stop the pipeline.
func (s *ValidateStep) Do(_ context.Context, l *model.Lookup) error {
	l.Category = category.Normalize(string(l.Category))

	spec, err := s.registry.Get(l.Category)
	if err != nil {
		l.Outcome = model.OutcomeInvalid
		l.Message = err.Error()
		return err
	}
	l.Spec = spec
	l.Query = spec.Normalize(l.RawQuery)

	if err := spec.Validate(l.Query); err != nil {
		l.Outcome = model.OutcomeInvalid
		l.Message = err.Error()
		return err
	}
	return nil
}

// Fetcher retrieves an upstream response. *lookup.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, spec category.Spec, query string) (*lookup.Result, error)
}

// FetchStep requests the query from the category endpoint.
type FetchStep struct {
	fetcher Fetcher
}

// NewFetchStep creates a FetchStep.
func NewFetchStep(fetcher Fetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string { return StepFetch }

// Do fetches the response and sets the outcome. Not-found answers and
// upstream failures are recorded on the lookup; only a missing endpoint
// stops the pipeline.
func (s *FetchStep) Do(ctx context.Context, l *model.Lookup) error {
	start := time.Now()
	res, err := s.fetcher.Fetch(ctx, l.Spec, l.Query)
	l.Elapsed = time.Since(start)
	if res != nil {
		l.URL = res.URL
		l.HTTPStatus = res.Status
		l.Payload = res.Payload
		l.Cached = res.Cached
		l.Elapsed = res.Elapsed
	}

	switch {
	case err == nil:
		l.Outcome = model.OutcomeFound
		return nil
	case lookup.IsNotFound(err):
		l.Outcome = model.OutcomeNotFound
		l.Message = lookup.UserMessage(err)
		return nil
	case errors.Is(err, category.ErrNoEndpoint):
		l.Outcome = model.OutcomeError
		l.Message = err.Error()
		return err
	default:
		l.Outcome = model.OutcomeError
		l.Message = lookup.UserMessage(err)
		l.Err = err
		return nil
	}
}

// RenderStep builds the report for found lookups.
type RenderStep struct {
	engine *report.Engine
}

// NewRenderStep creates a RenderStep. A nil engine selects the built-in
// renderers.
func NewRenderStep(engine *report.Engine) *RenderStep {
	if engine == nil {
		engine = report.NewEngine()
	}
	return &RenderStep{engine: engine}
}

// Name returns the step name.
func (s *RenderStep) Name() string { return StepRender }

// Do renders the payload when the lookup was found.
func (s *RenderStep) Do(_ context.Context, l *model.Lookup) error {
	if l.Outcome != model.OutcomeFound {
		return nil
	}
	l.Document = s.engine.Build(l.Payload, l.Category, l.Query)
	return nil
}

// Recorder persists searches. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, search *history.Search) error
}

// RecordStep stores the lookup in the search history.
type RecordStep struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewRecordStep creates a RecordStep.
func NewRecordStep(recorder Recorder, logger *slog.Logger) *RecordStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStep{recorder: recorder, logger: logger}
}

// Name returns the step name.
func (s *RecordStep) Name() string { return StepRecord }

// Do records found, not-found and errored lookups. A failing store is
// logged and does not fail the lookup.
func (s *RecordStep) Do(ctx context.Context, l *model.Lookup) error {
	status, ok := historyStatus(l.Outcome)
	if !ok {
		return nil
	}

	search := &history.Search{
		Category:   l.Category,
		Query:      l.Query,
		Status:     status,
		Message:    l.Message,
		ResponseMs: l.ResponseMs(),
	}
	if l.Document != nil {
		search.Report = l.Document.Text
	}

	if err := s.recorder.Record(ctx, search); err != nil {
		s.logger.Warn("failed to record search",
			"category", l.Category,
			"query", l.Query,
			"error", fmt.Errorf("%s: %w", StepRecord, err),
		)
		return nil
	}
	l.SearchID = search.ID
	return nil
}

func historyStatus(o model.Outcome) (history.Status, bool) {
	switch o {
	case model.OutcomeFound:
		return history.StatusFound, true
	case model.OutcomeNotFound:
		return history.StatusNotFound, true
	case model.OutcomeError:
		return history.StatusError, true
	default:
		return "", false
	}
}
