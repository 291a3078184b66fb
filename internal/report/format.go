package report

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Report widths in columns.
const (
	reportWidth = 70
	familyWidth = 56
)

// Shared report text.
const (
	notAvailable     = "N/A"
	confidentialLine = "CONFIDENTIAL: Authorized Use Only"
	timestampLayout  = "02/01/2006, 15:04:05"
)

// CamelCaseToTitle converts a payload key to a display label.
// Keys whose upper-cased form is exactly "RCID" or "UID" get fixed labels;
// otherwise a space is inserted before every internal ASCII upper-case
// letter and the first character is capitalised.
func CamelCaseToTitle(key string) string {
	switch strings.ToUpper(key) {
	case "RCID":
		return "RC ID"
	case "UID":
		return "UID Linked"
	}

	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	out := b.String()
	first, size := utf8.DecodeRuneInString(out)
	if first == utf8.RuneError {
		return out
	}
	return string(unicode.ToUpper(first)) + out[size:]
}

// width returns the display width of s in runes.
func width(s string) int {
	return utf8.RuneCountInString(s)
}

// padEnd right-pads s with spaces to n runes.
func padEnd(s string, n int) string {
	if w := width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

// padStart left-pads s with spaces to n runes.
func padStart(s string, n int) string {
	if w := width(s); w < n {
		return strings.Repeat(" ", n-w) + s
	}
	return s
}

// center places s in the middle of a line of n columns using leading
// spaces only, rounding the left margin down.
func center(s string, n int) string {
	w := width(s)
	if w >= n {
		return s
	}
	return strings.Repeat(" ", (n-w)/2) + s
}

// startPadCenter start-pads s to ceil((n+len)/2) columns. For odd margins
// the text lands one column right of center.
func startPadCenter(s string, n int) string {
	return padStart(s, (n+width(s)+1)/2)
}

// field is one "Label: value" line.
type field struct {
	label string
	value string
}

// labelWidth returns the widest label in fields.
func labelWidth(fields []field) int {
	w := 0
	for _, f := range fields {
		w = max(w, width(f.label))
	}
	return w
}

// builder accumulates report lines.
type builder struct {
	sb strings.Builder
}

func (b *builder) line(s string) {
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
}

func (b *builder) linef(format string, args ...any) {
	b.line(fmt.Sprintf(format, args...))
}

func (b *builder) blank() {
	b.sb.WriteByte('\n')
}

func (b *builder) rule(ch string, n int) {
	b.line(strings.Repeat(ch, n))
}

// aligned writes fields with labels padded to the widest label plus two.
func (b *builder) aligned(fields []field) {
	b.alignedTo(fields, labelWidth(fields)+2)
}

// alignedTo writes fields with labels padded to col columns.
func (b *builder) alignedTo(fields []field, col int) {
	for _, f := range fields {
		b.line(padEnd(f.label, col) + ": " + f.value)
	}
}

// banner writes a title block framed by '=' rules with the title and
// "FOR <query>" lines centered.
func (b *builder) banner(title, query string, n int) {
	b.rule("=", n)
	b.line(center(title, n))
	b.line(center("FOR "+query, n))
	b.rule("=", n)
	b.blank()
}

// footer writes the timestamp and data source between '-' rules.
func (b *builder) footer(stamp, source string, n int) {
	b.rule("-", n)
	b.line("Report generated: " + stamp)
	b.line("Data Source: " + source)
	b.rule("-", n)
	b.blank()
}

func (b *builder) String() string {
	return b.sb.String()
}
