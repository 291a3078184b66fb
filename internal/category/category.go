package category

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is a lookup category tag.
type Category string

// Known category tags.
const (
	Mobile   Category = "mobile"
	Aadhaar  Category = "aadhaar"
	Family   Category = "family"
	GST      Category = "gst"
	Telegram Category = "telegram"
	IFSC     Category = "ifsc"
	Vehicle  Category = "vehicle"
	Fampay   Category = "fampay"
	PakNum   Category = "paknum"
	UPI      Category = "upi"
)

// String returns the tag.
func (c Category) String() string { return string(c) }

// Title returns the tag upper-cased, as used in report titles.
func (c Category) Title() string {
	return cases.Upper(language.Und).String(string(c))
}

// Normalize trims and lower-cases a user-supplied tag.
func Normalize(tag string) Category {
	return Category(strings.ToLower(strings.TrimSpace(tag)))
}

// Transform is applied to user input before validation.
type Transform string

// Input transforms.
const (
	TransformNone   Transform = "none"
	TransformDigits Transform = "digits"
	TransformUpper  Transform = "upper"
)

// QueryPlaceholder is replaced by the escaped query in endpoint templates.
const QueryPlaceholder = "{query}"

// Spec describes one lookup category.
type Spec struct {
	Category     Category
	Label        string
	Placeholder  string
	Endpoint     string
	Headers      map[string]string
	MinLength    int
	MaxLength    int
	Transform    Transform
	ErrorMessage string
	Info         string
}

// Normalize applies the category's input transform to a raw query.
func (s Spec) Normalize(input string) string {
	input = strings.TrimSpace(input)
	switch s.Transform {
	case TransformDigits:
		return strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) && r < utf8.RuneSelf {
				return r
			}
			return -1
		}, input)
	case TransformUpper:
		return cases.Upper(language.Und).String(input)
	default:
		return input
	}
}

// Validate checks the query length against the category bounds.
func (s Spec) Validate(query string) error {
	n := utf8.RuneCountInString(query)
	if n < s.MinLength || (s.MaxLength > 0 && n > s.MaxLength) {
		return &ValidationError{
			Category: s.Category,
			Message:  s.ErrorMessage,
			Length:   n,
			Min:      s.MinLength,
			Max:      s.MaxLength,
		}
	}
	return nil
}

// URL expands the endpoint template for query. Templates without the
// {query} placeholder get the escaped query appended.
func (s Spec) URL(query string) (string, error) {
	if s.Endpoint == "" {
		return "", fmt.Errorf("%w: %s", ErrNoEndpoint, s.Category)
	}
	escaped := url.QueryEscape(query)
	if strings.Contains(s.Endpoint, QueryPlaceholder) {
		return strings.ReplaceAll(s.Endpoint, QueryPlaceholder, escaped), nil
	}
	return s.Endpoint + escaped, nil
}
