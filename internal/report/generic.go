package report

import (
	"github.com/nao1215/lookupreport/internal/payload"
)

// genericSource is the data source label of generic reports.
const genericSource = "Secure OSINT Database"

// GenericRenderer prints every field of every record as an aligned
// "Label: value" line. It is the fallback for all categories.
type GenericRenderer struct{}

// Name returns "generic".
func (*GenericRenderer) Name() string { return "generic" }

// Match always reports true.
func (*GenericRenderer) Match(payload.Value) bool { return true }

// Render formats p, which may be a single mapping or a sequence of them.
// Elements that are not mappings are skipped; fields that are null or an
// empty string are omitted.
func (*GenericRenderer) Render(p payload.Value, req Request) string {
	records, ok := p.Items()
	if !ok {
		records = []payload.Value{p}
	}

	var b builder
	b.rule("=", reportWidth)
	b.line(startPadCenter(req.Category.Title()+" ANALYSIS REPORT", reportWidth))
	b.line(startPadCenter("FOR "+req.Query, reportWidth))
	b.rule("=", reportWidth)
	b.blank()

	count := 0
	for _, r := range records {
		if r.Kind() == payload.KindMapping {
			count++
		}
	}
	b.linef("Total Records: %d", count)
	b.blank()

	for i, r := range records {
		m, ok := r.Mapping()
		if !ok {
			continue
		}

		b.rule("-", reportWidth)
		b.linef("RECORD %d", i+1)
		b.rule("-", reportWidth)

		col := 0
		for key := range m.All() {
			col = max(col, width(CamelCaseToTitle(key)))
		}
		col += 2

		for key, v := range m.All() {
			if v.IsNull() || (v.Kind() == payload.KindString && v.Text() == "") {
				continue
			}
			b.line(padEnd(CamelCaseToTitle(key), col) + ": " + v.Text())
		}
		b.blank()
	}

	b.footer(req.Timestamp(), genericSource, reportWidth)
	return b.String()
}
