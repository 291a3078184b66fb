package payload

import (
	"iter"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant of the tagged union a Value holds.
type Kind int

const (
	// KindNull is JSON null, and also the zero Value (absent).
	KindNull Kind = iota
	// KindBool is a JSON boolean.
	KindBool
	// KindNumber is a JSON number kept as its literal text.
	KindNumber
	// KindString is a JSON string.
	KindString
	// KindSequence is a JSON array.
	KindSequence
	// KindMapping is a JSON object with ordered keys.
	KindMapping
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is one node of a raw response tree.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	s    string // string content, or the literal text of a number
	seq  []Value
	m    *Mapping
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a number Value from its literal JSON text (e.g. "42", "1.5").
func Number(literal string) Value { return Value{kind: KindNumber, s: literal} }

// Int returns a number Value for an integer.
func Int(i int64) Value { return Number(strconv.FormatInt(i, 10)) }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence returns a sequence Value holding items in order.
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, seq: items}
}

// Object returns a mapping Value backed by m. A nil m yields an empty mapping.
func Object(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}
	return Value{kind: KindMapping, m: m}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null or absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Mapping returns the underlying mapping when v is a mapping.
func (v Value) Mapping() (*Mapping, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	return v.m, true
}

// Items returns the elements when v is a sequence.
// The returned slice must not be modified.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.seq, true
}

// Get returns the value stored under key and whether the key is present.
// It reports false for any v that is not a mapping, so a missing field
// and a wrong-type parent are both "not present".
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	return v.m.Get(key)
}

// Has reports whether v is a mapping containing key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Field returns the value under key, or Null when v is not a mapping or
// the key is missing.
func (v Value) Field(key string) Value {
	f, _ := v.Get(key)
	return f
}

// Path follows a chain of mapping keys and returns Null as soon as a step
// is missing or not a mapping.
func (v Value) Path(keys ...string) Value {
	cur := v
	for _, k := range keys {
		next, ok := cur.Get(k)
		if !ok {
			return Value{}
		}
		cur = next
	}
	return cur
}

// Index returns element i of a sequence, or Null when out of range or
// when v is not a sequence.
func (v Value) Index(i int) Value {
	if v.kind != KindSequence || i < 0 || i >= len(v.seq) {
		return Value{}
	}
	return v.seq[i]
}

// Len returns the number of elements of a sequence or keys of a mapping,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return v.m.Len()
	default:
		return 0
	}
}

// Truthy applies JavaScript truthiness: null, false, 0, NaN and "" are
// falsy; every sequence and mapping, even an empty one, is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return v.s != ""
		}
		return f != 0 && !math.IsNaN(f)
	case KindString:
		return v.s != ""
	default:
		return true
	}
}

// Text coerces v to display text.
// Strings are returned verbatim, integers keep their literal digits, other
// numbers use the shortest decimal form, sequences are comma-joined and
// mappings are rendered as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.s)
	case KindString:
		return v.s
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, item := range v.seq {
			if item.kind == KindNull {
				continue
			}
			parts[i] = item.Text()
		}
		return strings.Join(parts, ",")
	case KindMapping:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// TextOr returns v.Text() when v is truthy and fallback otherwise,
// mirroring the `value || fallback` idiom upstream consumers rely on.
func (v Value) TextOr(fallback string) string {
	if !v.Truthy() {
		return fallback
	}
	return v.Text()
}

// formatNumber renders a JSON number literal for display.
func formatNumber(literal string) string {
	if isIntegerLiteral(literal) {
		return literal
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return literal
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// isIntegerLiteral reports whether s is an optionally negative run of digits.
func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Mapping is an insertion-ordered string-keyed map.
// Setting an existing key replaces its value but keeps its position.
type Mapping struct {
	keys   []string
	values map[string]Value
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Value)}
}

// Set stores v under key.
func (m *Mapping) Set(key string, v Value) *Mapping {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
	return m
}

// Get returns the value under key and whether it exists.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// All iterates over key/value pairs in insertion order.
func (m *Mapping) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}
