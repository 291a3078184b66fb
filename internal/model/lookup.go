package model

import (
	"time"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/payload"
	"github.com/nao1215/lookupreport/internal/report"
)

// Outcome classifies how a lookup ended.
type Outcome string

// Lookup outcomes.
const (
	// OutcomePending means the lookup has not produced an answer yet.
	OutcomePending Outcome = ""

	// OutcomeInvalid means the query failed category validation.
	OutcomeInvalid Outcome = "invalid"

	// OutcomeFound means the upstream returned data and a report was built.
	OutcomeFound Outcome = "found"

	// OutcomeNotFound means the upstream answered without data.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeError means the upstream could not be reached or decoded.
	OutcomeError Outcome = "error"
)

// Lookup is one query against one category.
type Lookup struct {
	// Category is the requested category tag, normalised by validation.
	Category category.Category `json:"category"`

	// RawQuery is the query as supplied by the user.
	RawQuery string `json:"-"`

	// Query is the query after the category transform.
	Query string `json:"query"`

	// Spec is the resolved category entry.
	Spec category.Spec `json:"-"`

	// URL is the upstream URL that was requested.
	URL string `json:"-"`

	// Payload is the decoded upstream response.
	Payload payload.Value `json:"-"`

	// HTTPStatus is the upstream status code.
	HTTPStatus int `json:"http_status,omitempty"`

	// Cached reports whether the response came from the cache.
	Cached bool `json:"cached"`

	// Elapsed is the upstream response time.
	Elapsed time.Duration `json:"-"`

	Outcome Outcome `json:"outcome"`

	// Message is the user-facing explanation for non-found outcomes.
	Message string `json:"message,omitempty"`

	// Document is the rendered report, set when Outcome is OutcomeFound.
	Document *report.Document `json:"document,omitempty"`

	// SearchID is the history row id, zero when not recorded.
	SearchID int64 `json:"search_id,omitempty"`

	// Err is the error that stopped the pipeline or failed the fetch.
	Err error `json:"-"`

	// PerformedSteps lists the names of the steps that ran.
	PerformedSteps []string `json:"-"`

	StartedAt time.Time `json:"started_at"`
}

// NewLookup creates a pending lookup.
func NewLookup(c category.Category, rawQuery string) *Lookup {
	return &Lookup{
		Category:  c,
		RawQuery:  rawQuery,
		Query:     rawQuery,
		StartedAt: time.Now(),
	}
}

// Succeeded reports whether a report was produced.
func (l *Lookup) Succeeded() bool {
	return l.Outcome == OutcomeFound && l.Document != nil
}

// ResponseMs returns Elapsed in whole milliseconds.
func (l *Lookup) ResponseMs() int64 {
	return l.Elapsed.Milliseconds()
}
