package report

import (
	"time"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/payload"
)

// Sentinel reports returned instead of a formatted record.
const (
	// NoDetails is returned when the raw response is null, an empty
	// object or an empty array.
	NoDetails = "No details found."

	// NoPayloadDetails is returned when the unwrapped payload is empty.
	NoPayloadDetails = "No details found in API response payload."
)

// Request carries the per-render inputs besides the payload.
type Request struct {
	Category category.Category
	Query    string

	// Now is the report timestamp; its Location is also used when
	// reformatting dates found in the payload.
	Now time.Time
}

// Timestamp formats Now for the "Report generated" line.
func (r Request) Timestamp() string {
	return r.Now.Format(timestampLayout)
}

// Renderer converts a payload into report text for one category.
// Implementations must be safe for concurrent use.
type Renderer interface {
	// Name identifies the renderer in logs and JSON output.
	Name() string

	// Match reports whether raw carries this renderer's fingerprint.
	// It is evaluated on the raw response, before envelope unwrapping.
	Match(raw payload.Value) bool

	// Render produces the report text.
	Render(p payload.Value, req Request) string
}

// Document is a rendered report together with how it was produced.
type Document struct {
	Category    category.Category `json:"category"`
	Query       string            `json:"query"`
	Renderer    string            `json:"renderer"`
	Sentinel    bool              `json:"sentinel"`
	GeneratedAt time.Time         `json:"generated_at"`
	Text        string            `json:"report"`
}

// Engine selects a Renderer for each response.
// It is read-only after construction and safe for concurrent use.
type Engine struct {
	renderers map[category.Category]Renderer
	fallback  Renderer
	resolver  *payload.Resolver
	clock     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source for report timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithResolver replaces the envelope resolver.
func WithResolver(r *payload.Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithRenderer registers r for category c, replacing any built-in one.
func WithRenderer(c category.Category, r Renderer) Option {
	return func(e *Engine) {
		e.renderers[c] = r
	}
}

// WithFallback replaces the generic renderer.
func WithFallback(r Renderer) Option {
	return func(e *Engine) {
		if r != nil {
			e.fallback = r
		}
	}
}

// NewEngine creates an Engine with the built-in renderers.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		renderers: map[category.Category]Renderer{
			category.Family:  &FamilyRenderer{},
			category.Vehicle: &VehicleRenderer{},
			category.Fampay:  &FampayRenderer{},
			category.PakNum:  &PakNumRenderer{},
			category.UPI:     &UPIRenderer{},
		},
		fallback: &GenericRenderer{},
		resolver: payload.NewResolver(),
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Build renders raw for category c and query and returns the Document.
//
// Dispatch order:
//  1. null, empty object or empty array: NoDetails
//  2. a dedicated renderer whose fingerprint matches raw
//  3. the resolved payload is empty: NoPayloadDetails
//  4. the generic renderer on the resolved payload
func (e *Engine) Build(raw payload.Value, c category.Category, query string) *Document {
	req := Request{Category: c, Query: query, Now: e.clock()}
	doc := &Document{Category: c, Query: query, GeneratedAt: req.Now}

	if payload.IsNoData(raw) {
		doc.Sentinel = true
		doc.Text = NoDetails
		return doc
	}

	if r, ok := e.renderers[c]; ok && r.Match(raw) {
		doc.Renderer = r.Name()
		doc.Text = r.Render(raw, req)
		return doc
	}

	resolved := e.resolver.Resolve(raw).Value
	if payload.IsEmpty(resolved) {
		doc.Sentinel = true
		doc.Text = NoPayloadDetails
		return doc
	}

	doc.Renderer = e.fallback.Name()
	doc.Text = e.fallback.Render(resolved, req)
	return doc
}

// Render returns the report text for raw.
func (e *Engine) Render(raw payload.Value, c category.Category, query string) string {
	return e.Build(raw, c, query).Text
}

// Explanation describes how a response would be rendered.
type Explanation struct {
	payload.Diagnosis
	Renderer string `json:"renderer,omitempty"`
}

// Explain reports which renderer would handle raw, or why it would be
// answered with a sentinel.
func (e *Engine) Explain(raw payload.Value, c category.Category) Explanation {
	if payload.IsNoData(raw) {
		return Explanation{Diagnosis: e.resolver.Explain(raw)}
	}
	if r, ok := e.renderers[c]; ok && r.Match(raw) {
		return Explanation{
			Diagnosis: payload.Diagnosis{Stage: payload.StageRaw, Kind: raw.Kind().String()},
			Renderer:  r.Name(),
		}
	}

	d := e.resolver.Explain(raw)
	if d.Empty {
		return Explanation{Diagnosis: d}
	}
	return Explanation{Diagnosis: d, Renderer: e.fallback.Name()}
}

var defaultEngine = NewEngine()

// Render renders raw with the default Engine.
func Render(raw payload.Value, c category.Category, query string) string {
	return defaultEngine.Render(raw, c, query)
}
