package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decoding errors.
var (
	// ErrEmptyInput is returned when the input holds no JSON value at all.
	ErrEmptyInput = errors.New("empty input: no JSON value")

	// ErrTrailingData is returned when extra data follows the top-level value.
	ErrTrailingData = errors.New("invalid JSON: trailing data after top-level value")
)

// Parse decodes a single JSON document into a Value.
func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

// MustParse is like Parse but panics on error. It is meant for fixtures
// and package-level literals.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("payload: MustParse(%q): %v", s, err))
	}
	return v
}

// Decode reads exactly one JSON value from r, preserving object key order
// and number literals.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, ErrEmptyInput
		}
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, ErrTrailingData
	}
	return v, nil
}

// decodeValue consumes the next complete value from the token stream.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeMapping(dec)
		case '[':
			return decodeSequence(dec)
		default:
			return Value{}, fmt.Errorf("invalid JSON: unexpected delimiter %q", rune(t))
		}
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return String(t), nil
	default:
		return Value{}, fmt.Errorf("invalid JSON: unexpected token %v", tok)
	}
}

func decodeMapping(dec *json.Decoder) (Value, error) {
	m := NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, truncated(err)
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("invalid JSON: object key must be a string, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, truncated(err)
		}
		m.Set(key, v)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, truncated(err)
	}
	return Object(m), nil
}

func decodeSequence(dec *json.Decoder) (Value, error) {
	items := make([]Value, 0)
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, truncated(err)
		}
		items = append(items, v)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, truncated(err)
	}
	return Sequence(items...), nil
}

// truncated turns an EOF inside a container into io.ErrUnexpectedEOF.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// MarshalJSON encodes v as JSON, writing mapping keys in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes data into v, preserving key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.s)
	case KindString:
		return writeString(buf, v.s)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		i := 0
		for key, item := range v.m.All() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := item.writeJSON(buf); err != nil {
				return err
			}
			i++
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("payload: cannot encode kind %v", v.kind)
	}
	return nil
}

// writeString writes s as a JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
