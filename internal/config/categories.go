package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nao1215/lookupreport/internal/category"
)

// CategoryConfig overrides one lookup category.
type CategoryConfig struct {
	// Label is the display name, e.g. "Mobile Lookup".
	Label string `yaml:"label,omitempty"`

	// Endpoint is the upstream URL template. "{query}" is replaced by the
	// escaped query; without it the query is appended.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Headers are sent with every request for this category.
	Headers map[string]string `yaml:"headers,omitempty"`

	MinLength int `yaml:"minLength,omitempty"`
	MaxLength int `yaml:"maxLength,omitempty"`

	// Transform is one of "none", "digits" or "upper".
	Transform string `yaml:"transform,omitempty"`

	ErrorMessage string `yaml:"errorMessage,omitempty"`
	Info         string `yaml:"info,omitempty"`
}

// Defaults holds settings applied to every category.
type Defaults struct {
	// Headers are sent with every upstream request; category headers win.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent replaces the built-in User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .lookupreport configuration file.
type File struct {
	// Categories maps category tags to their overrides. Unknown tags
	// register new categories rendered by the generic renderer.
	Categories map[string]CategoryConfig `yaml:"categories,omitempty"`

	Defaults Defaults `yaml:"defaults,omitempty"`
}

// Validate checks transform names, length bounds and that no two tags
// normalize to the same category.
func (cf *File) Validate() error {
	seen := make(map[category.Category]string, len(cf.Categories))
	for _, tag := range slices.Sorted(maps.Keys(cf.Categories)) {
		cc := cf.Categories[tag]
		c := category.Normalize(tag)
		if prev, ok := seen[c]; ok {
			return fmt.Errorf("%w: %q and %q", ErrDuplicateCategory, prev, tag)
		}
		seen[c] = tag

		if _, err := parseTransform(cc.Transform); err != nil {
			return fmt.Errorf("category %q: %w", tag, err)
		}
		if cc.MinLength < 0 || cc.MaxLength < 0 ||
			(cc.MaxLength > 0 && cc.MinLength > cc.MaxLength) {
			return fmt.Errorf("category %q: %w: min %d, max %d", tag, ErrInvalidLength, cc.MinLength, cc.MaxLength)
		}
	}
	return nil
}

// GetCategoryConfig returns the configuration for tag merged with the
// default headers.
func (cf *File) GetCategoryConfig(tag string) CategoryConfig {
	want := category.Normalize(tag)
	var result CategoryConfig
	for _, key := range slices.Sorted(maps.Keys(cf.Categories)) {
		if category.Normalize(key) == want {
			result = cf.Categories[key]
			break
		}
	}

	headers := make(map[string]string, len(cf.Defaults.Headers)+len(result.Headers))
	maps.Copy(headers, cf.Defaults.Headers)
	maps.Copy(headers, result.Headers)
	if len(headers) > 0 {
		result.Headers = headers
	}
	return result
}

// Apply merges the file into reg. Every registered category receives the
// default headers; categories named in the file receive their overrides.
// New categories are registered in tag order.
func (cf *File) Apply(reg *category.Registry) error {
	if err := cf.Validate(); err != nil {
		return err
	}

	tags := reg.Categories()
	for _, tag := range slices.Sorted(maps.Keys(cf.Categories)) {
		c := category.Normalize(tag)
		if !reg.Has(c) && !slices.Contains(tags, c) {
			tags = append(tags, c)
		}
	}

	for _, c := range tags {
		cc := cf.GetCategoryConfig(string(c))
		transform, _ := parseTransform(cc.Transform)
		reg.Apply(c, category.Override{
			Label:        cc.Label,
			Endpoint:     cc.Endpoint,
			Headers:      cc.Headers,
			MinLength:    cc.MinLength,
			MaxLength:    cc.MaxLength,
			Transform:    transform,
			ErrorMessage: cc.ErrorMessage,
			Info:         cc.Info,
		})
	}
	return nil
}

func parseTransform(s string) (category.Transform, error) {
	switch t := category.Transform(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return "", nil
	case category.TransformNone, category.TransformDigits, category.TransformUpper:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransform, s)
	}
}
