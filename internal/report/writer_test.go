package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/payload"
)

func createTestDocument() *Document {
	return newTestEngine().Build(
		payload.MustParse(`{"data":{"name":"Test User"}}`), category.Mobile, "9999999999")
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report text verbatim", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		doc := createTestDocument()
		n, err := NewTextWriter(&buf).Write(doc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != doc.Text {
			t.Error("expected output to equal the rendered text")
		}
		if n != buf.Len() {
			t.Errorf("n = %d, want %d", n, buf.Len())
		}
	})

	t.Run("terminates sentinel answers", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		doc := newTestEngine().Build(payload.MustParse(`{}`), category.Mobile, "q")
		if _, err := NewTextWriter(&buf).Write(doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != NoDetails+"\n" {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes a compact object", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestDocument()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "\n") {
			t.Errorf("expected a single line, got %q", out)
		}

		var got map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got["category"] != "mobile" || got["renderer"] != "generic" || got["sentinel"] != false {
			t.Errorf("unexpected document: %v", got)
		}
		if !strings.Contains(got["report"].(string), "MOBILE ANALYSIS REPORT") {
			t.Error("expected report text in JSON")
		}
	})

	t.Run("pretty prints", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestDocument()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"query\": \"9999999999\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes metadata and fenced report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestDocument()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"## MOBILE lookup: 9999999999", "| Renderer", "generic", "```", "MOBILE ANALYSIS REPORT"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q\n%s", want, out)
			}
		}
	})

	t.Run("sentinel becomes a note", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		doc := newTestEngine().Build(payload.MustParse(`null`), category.Mobile, "q")
		if _, err := NewMarkdownWriter(&buf).Write(doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!NOTE]") || !strings.Contains(buf.String(), NoDetails) {
			t.Errorf("expected a note, got:\n%s", buf.String())
		}
	})
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write(*Document) (int, error) { return 0, errWrite }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every writer", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewTextWriter(&a), NewJSONWriter(&b))
		n, err := mw.Write(createTestDocument())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
		if n != a.Len()+b.Len() {
			t.Errorf("n = %d, want %d", n, a.Len()+b.Len())
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewTextWriter(&after))
		if _, err := mw.Write(createTestDocument()); !errors.Is(err, errWrite) {
			t.Errorf("err = %v, want %v", err, errWrite)
		}
		if after.Len() != 0 {
			t.Error("writers after a failure should not be called")
		}
	})
}
