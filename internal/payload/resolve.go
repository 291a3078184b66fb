package payload

// Rule is one envelope convention: when a mapping contains Key (and When,
// if set, accepts the mapping) the value under Key is the payload.
type Rule struct {
	// Key is the wrapper key, matched case-sensitively.
	Key string

	// When is an optional extra condition on the enclosing mapping.
	When func(m *Mapping) bool
}

// matches reports whether the rule applies to m and returns the wrapped value.
func (r Rule) matches(m *Mapping) (Value, bool) {
	v, ok := m.Get(r.Key)
	if !ok {
		return Value{}, false
	}
	if r.When != nil && !r.When(m) {
		return Value{}, false
	}
	return v, true
}

// SuccessIsTrue accepts mappings whose "Success" field is the boolean true.
func SuccessIsTrue(m *Mapping) bool {
	v, ok := m.Get("Success")
	return ok && v.kind == KindBool && v.b
}

// DefaultRules lists the envelope conventions in priority order.
// The most common wrapper comes first.
var DefaultRules = []Rule{
	{Key: "data"},
	{Key: "result"},
	{Key: "response"},
	{Key: "details"},
	{Key: "Data", When: SuccessIsTrue},
	{Key: "aadhaar"},
}

// Resolution is the outcome of a single unwrap pass.
type Resolution struct {
	// Value is the substantive payload.
	Value Value

	// Key is the wrapper key that matched, or "" when nothing was unwrapped.
	Key string
}

// Unwrapped reports whether an envelope key matched.
func (r Resolution) Unwrapped() bool {
	return r.Key != ""
}

// Resolver locates the payload inside a response envelope.
// A Resolver is read-only after construction and safe for concurrent use.
type Resolver struct {
	rules []Rule
}

// NewResolver creates a Resolver applying rules first-match-wins.
// With no rules it uses DefaultRules.
func NewResolver(rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	r := &Resolver{rules: make([]Rule, len(rules))}
	copy(r.rules, rules)
	return r
}

// Resolve performs exactly one unwrap pass over raw.
// Non-mapping values are returned unchanged. A mapping with no matching
// wrapper key is itself the payload.
func (r *Resolver) Resolve(raw Value) Resolution {
	m, ok := raw.Mapping()
	if !ok {
		return Resolution{Value: raw}
	}
	for _, rule := range r.rules {
		if v, ok := rule.matches(m); ok {
			return Resolution{Value: v, Key: rule.Key}
		}
	}
	return Resolution{Value: raw}
}

var defaultResolver = NewResolver()

// Resolve unwraps raw with DefaultRules and returns the payload.
func Resolve(raw Value) Value {
	return defaultResolver.Resolve(raw).Value
}

// IsEmpty reports whether v carries no data: it is null/absent or a
// mapping with zero keys. Sequences are never empty by this predicate,
// even with no elements.
func IsEmpty(v Value) bool {
	switch v.kind {
	case KindNull:
		return true
	case KindMapping:
		return v.m.Len() == 0
	default:
		return false
	}
}

// IsNoData reports whether a raw response, before any unwrapping, should be
// answered with the "no details" sentinel: IsEmpty, or an empty sequence.
func IsNoData(raw Value) bool {
	if IsEmpty(raw) {
		return true
	}
	return raw.kind == KindSequence && len(raw.seq) == 0
}
