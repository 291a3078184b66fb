package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/lookupreport/internal/lookup"
	"github.com/nao1215/lookupreport/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step. Non-critical failures should be recorded on
	// the lookup and return nil.
	Do(ctx context.Context, l *model.Lookup) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps executing steps after one fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence, checking for cancellation before
// each one.
//
// It returns the first step error unless continueOnError is set. The
// error is also stored in l.Err, and l.Message is filled with the
// user-facing text when still empty.
func (p *Pipeline) Execute(ctx context.Context, l *model.Lookup) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"category", l.Category,
				"reason", ctx.Err(),
			)
			p.fail(l, ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"category", l.Category,
			"query", l.Query,
		)

		if err := step.Do(ctx, l); err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"category", l.Category,
				"query", l.Query,
				"error", err,
			)
			p.fail(l, err)

			if !p.continueOnError {
				return err
			}
		}

		l.PerformedSteps = append(l.PerformedSteps, step.Name())
	}

	return nil
}

func (p *Pipeline) fail(l *model.Lookup, err error) {
	if l.Err == nil {
		l.Err = err
	}
	if l.Message == "" {
		l.Message = lookup.UserMessage(err)
	}
	if l.Outcome == model.OutcomePending || l.Outcome == model.OutcomeFound {
		l.Outcome = model.OutcomeError
	}
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
