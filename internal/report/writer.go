package report

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/nao1215/markdown"
)

// Writer outputs rendered documents.
type Writer interface {
	// Write outputs doc to the configured destination and returns the
	// number of bytes written.
	Write(doc *Document) (int, error)
}

// MultiWriter writes each document to several Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs doc to every Writer and stops on the first error.
func (m *MultiWriter) Write(doc *Document) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(doc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// TextWriter outputs the report text exactly as rendered.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs doc.Text, adding a trailing newline to sentinel answers.
func (w *TextWriter) Write(doc *Document) (int, error) {
	text := doc.Text
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return io.WriteString(w.output, text)
}

// JSONWriter outputs documents as JSON objects.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs doc as a single JSON object followed by a newline.
func (w *JSONWriter) Write(doc *Document) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(doc, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// MarkdownWriter outputs a document as a Markdown section: a metadata
// table followed by the report in a fenced block.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs doc in Markdown.
func (w *MarkdownWriter) Write(doc *Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H2f("%s lookup: %s", doc.Category.Title(), doc.Query)
	md.PlainText("")

	renderer := doc.Renderer
	if renderer == "" {
		renderer = "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Category", doc.Category.String()},
			{"Renderer", renderer},
			{"Generated", doc.GeneratedAt.Format(timestampLayout)},
		},
	})
	md.PlainText("")

	if doc.Sentinel {
		md.Note(doc.Text)
	} else {
		md.CodeBlocks(markdown.SyntaxHighlightText, strings.TrimRight(doc.Text, "\n"))
	}
	md.PlainText("")

	return len(md.String()), md.Build()
}
