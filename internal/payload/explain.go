package payload

import "fmt"

// Stage identifies where in the resolution flow a payload was judged empty.
type Stage string

const (
	// StageRaw is the response as received, before unwrapping.
	StageRaw Stage = "raw"
	// StageResolved is the payload after envelope unwrapping.
	StageResolved Stage = "resolved"
)

// Reason explains why a payload is empty.
type Reason string

const (
	// ReasonNone means the payload has content.
	ReasonNone Reason = ""
	// ReasonNull means the value is null or absent.
	ReasonNull Reason = "null"
	// ReasonEmptyMapping means the value is a mapping without keys.
	ReasonEmptyMapping Reason = "empty-mapping"
	// ReasonEmptySequence means the raw response is an array without elements.
	ReasonEmptySequence Reason = "empty-sequence"
)

// Diagnosis describes how a raw response was judged.
type Diagnosis struct {
	Empty  bool   `json:"empty"`
	Stage  Stage  `json:"stage"`
	Reason Reason `json:"reason,omitempty"`
	Key    string `json:"key,omitempty"`
	Kind   string `json:"kind"`
}

// String returns a one-line human-readable explanation.
func (d Diagnosis) String() string {
	if !d.Empty {
		if d.Key != "" {
			return fmt.Sprintf("payload has content: %s found under wrapper key %q", d.Kind, d.Key)
		}
		return fmt.Sprintf("payload has content: %s with no wrapper key", d.Kind)
	}

	switch d.Stage {
	case StageRaw:
		switch d.Reason {
		case ReasonNull:
			return "response is empty: body is null or absent"
		case ReasonEmptySequence:
			return "response is empty: body is an array with no elements"
		default:
			return "response is empty: body is an object with no keys"
		}
	default:
		switch d.Reason {
		case ReasonNull:
			return fmt.Sprintf("payload is empty: wrapper key %q holds null", d.Key)
		default:
			return fmt.Sprintf("payload is empty: wrapper key %q holds an object with no keys", d.Key)
		}
	}
}

// Explain reports whether raw would be rendered as a "no details" sentinel
// and why, following the same decisions as rendering on the generic path.
func (r *Resolver) Explain(raw Value) Diagnosis {
	if IsNoData(raw) {
		return Diagnosis{
			Empty:  true,
			Stage:  StageRaw,
			Reason: reasonFor(raw),
			Kind:   raw.kind.String(),
		}
	}

	res := r.Resolve(raw)
	d := Diagnosis{
		Stage: StageResolved,
		Key:   res.Key,
		Kind:  res.Value.kind.String(),
	}
	if IsEmpty(res.Value) {
		d.Empty = true
		d.Reason = reasonFor(res.Value)
	}
	return d
}

// Explain diagnoses raw with DefaultRules.
func Explain(raw Value) Diagnosis {
	return defaultResolver.Explain(raw)
}

func reasonFor(v Value) Reason {
	switch v.kind {
	case KindNull:
		return ReasonNull
	case KindMapping:
		return ReasonEmptyMapping
	case KindSequence:
		return ReasonEmptySequence
	default:
		return ReasonNone
	}
}
