package pipeline

import (
	"log/slog"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/report"
)

// Components are the collaborators of a lookup pipeline.
type Components struct {
	Registry *category.Registry
	Fetcher  Fetcher
	Engine   *report.Engine

	// Recorder is optional; without it the record step is skipped.
	Recorder Recorder

	Logger *slog.Logger
}

// NewLookupPipeline builds the validate, fetch, render and record pipeline.
func NewLookupPipeline(c Components) *Pipeline {
	p := New(WithLogger(c.Logger))
	p.AddSteps(
		NewValidateStep(c.Registry),
		NewFetchStep(c.Fetcher),
		NewRenderStep(c.Engine),
	)
	if c.Recorder != nil {
		p.AddStep(NewRecordStep(c.Recorder, c.Logger))
	}
	return p
}
