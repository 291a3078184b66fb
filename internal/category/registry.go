package category

import (
	"fmt"
	"maps"
)

// Default bounds for categories added only through configuration.
const (
	defaultMinLength = 1
	defaultMaxLength = 100
)

// defaultSpecs lists the built-in categories in display order.
// Endpoints are intentionally empty: they come from the config file.
func defaultSpecs() []Spec {
	return []Spec{
		{
			Category:     Mobile,
			Label:        "Mobile Number Lookup",
			Placeholder:  "Enter 10-digit number...",
			MinLength:    10,
			MaxLength:    10,
			Transform:    TransformDigits,
			ErrorMessage: "Mobile must be 10 digits.",
			Info:         "Mobile: 10-digit number",
		},
		{
			Category:     Aadhaar,
			Label:        "Aadhaar Lookup",
			Placeholder:  "Enter 12-digit number...",
			MinLength:    12,
			MaxLength:    12,
			Transform:    TransformDigits,
			ErrorMessage: "Aadhaar must be 12 digits.",
			Info:         "Aadhaar: 12-digit number",
		},
		{
			Category:     Family,
			Label:        "Family Info Lookup",
			Placeholder:  "Enter Aadhaar to find family info...",
			MinLength:    12,
			MaxLength:    12,
			Transform:    TransformDigits,
			ErrorMessage: "Aadhaar must be 12 digits.",
			Info:         "Family (by Aadhaar): 12-digit number",
		},
		{
			Category:     GST,
			Label:        "GSTIN Lookup",
			Placeholder:  "Enter 15-char GSTIN...",
			MinLength:    15,
			MaxLength:    15,
			Transform:    TransformUpper,
			ErrorMessage: "GSTIN must be 15 characters.",
			Info:         "GST: 15-char alphanumeric",
		},
		{
			Category:     Telegram,
			Label:        "Telegram Lookup",
			Placeholder:  "Enter Telegram User ID...",
			MinLength:    1,
			MaxLength:    50,
			Transform:    TransformNone,
			ErrorMessage: "Invalid Telegram User ID.",
			Info:         "Telegram: User/ID",
		},
		{
			Category:     IFSC,
			Label:        "IFSC Lookup",
			Placeholder:  "Enter 11-char IFSC Code...",
			MinLength:    11,
			MaxLength:    11,
			Transform:    TransformUpper,
			ErrorMessage: "IFSC must be 11 characters.",
			Info:         "IFSC: 11-char alphanumeric",
		},
		{
			Category:     Vehicle,
			Label:        "Vehicle RC Lookup",
			Placeholder:  "Enter Vehicle RC Number...",
			MinLength:    4,
			MaxLength:    15,
			Transform:    TransformUpper,
			ErrorMessage: "Invalid Vehicle RC format.",
			Info:         "Vehicle RC: 10-15 char alphanumeric",
		},
		{
			Category:     Fampay,
			Label:        "Fampay Lookup",
			Placeholder:  "Enter Fampay username or number...",
			MinLength:    3,
			MaxLength:    50,
			Transform:    TransformNone,
			ErrorMessage: "Invalid Fampay username.",
			Info:         "Fampay: username or number",
		},
		{
			Category:     PakNum,
			Label:        "Pakistan Number Lookup",
			Placeholder:  "Enter Pakistan number...",
			MinLength:    10,
			MaxLength:    12,
			Transform:    TransformDigits,
			ErrorMessage: "Pakistan number must be 10 to 12 digits.",
			Info:         "Pakistan: 10-12 digit number",
		},
		{
			Category:     UPI,
			Label:        "UPI Lookup",
			Placeholder:  "Enter UPI ID (name@bank)...",
			MinLength:    3,
			MaxLength:    50,
			Transform:    TransformNone,
			ErrorMessage: "Invalid UPI ID.",
			Info:         "UPI: VPA such as name@bank",
		},
	}
}

// Override changes parts of a Spec. Zero fields leave the Spec unchanged.
type Override struct {
	Label        string
	Endpoint     string
	Headers      map[string]string
	MinLength    int
	MaxLength    int
	Transform    Transform
	ErrorMessage string
	Info         string
}

// Registry maps category tags to Specs, keeping registration order.
// It is not safe for concurrent mutation; build it once and share it.
type Registry struct {
	specs map[Category]Spec
	order []Category
}

// NewRegistry creates a registry holding specs.
func NewRegistry(specs ...Spec) *Registry {
	r := &Registry{specs: make(map[Category]Spec, len(specs))}
	for _, s := range specs {
		r.Register(s)
	}
	return r
}

// DefaultRegistry returns a fresh registry with the built-in categories.
func DefaultRegistry() *Registry {
	return NewRegistry(defaultSpecs()...)
}

// Register adds or replaces a Spec.
func (r *Registry) Register(s Spec) {
	if _, ok := r.specs[s.Category]; !ok {
		r.order = append(r.order, s.Category)
	}
	r.specs[s.Category] = s
}

// Lookup returns the Spec for c.
func (r *Registry) Lookup(c Category) (Spec, bool) {
	s, ok := r.specs[c]
	return s, ok
}

// Get returns the Spec for c or ErrUnknownCategory.
func (r *Registry) Get(c Category) (Spec, error) {
	s, ok := r.specs[c]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return s, nil
}

// Has reports whether c is registered.
func (r *Registry) Has(c Category) bool {
	_, ok := r.specs[c]
	return ok
}

// Categories returns the registered tags in registration order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every Spec in registration order.
func (r *Registry) All() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.specs[c])
	}
	return out
}

// Apply merges o into the Spec for c, registering c when it is new.
func (r *Registry) Apply(c Category, o Override) {
	s, ok := r.specs[c]
	if !ok {
		s = Spec{
			Category:  c,
			Label:     c.Title() + " Lookup",
			MinLength: defaultMinLength,
			MaxLength: defaultMaxLength,
			Transform: TransformNone,
		}
	}

	if o.Label != "" {
		s.Label = o.Label
	}
	if o.Endpoint != "" {
		s.Endpoint = o.Endpoint
	}
	if len(o.Headers) > 0 {
		headers := make(map[string]string, len(s.Headers)+len(o.Headers))
		maps.Copy(headers, s.Headers)
		maps.Copy(headers, o.Headers)
		s.Headers = headers
	}
	if o.MinLength > 0 {
		s.MinLength = o.MinLength
	}
	if o.MaxLength > 0 {
		s.MaxLength = o.MaxLength
	}
	if o.Transform != "" {
		s.Transform = o.Transform
	}
	if o.ErrorMessage != "" {
		s.ErrorMessage = o.ErrorMessage
	}
	if o.Info != "" {
		s.Info = o.Info
	}

	r.Register(s)
}
