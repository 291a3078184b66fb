package report

import (
	"github.com/nao1215/lookupreport/internal/payload"
)

const pakNumSource = "Pakistan Number API"

// PakNumRenderer formats Pakistan SIM ownership records.
type PakNumRenderer struct{}

// Name returns "paknum".
func (*PakNumRenderer) Name() string { return "paknum" }

// Match reports whether raw is a mapping whose data field is a sequence.
func (*PakNumRenderer) Match(raw payload.Value) bool {
	return raw.Kind() == payload.KindMapping && raw.Field("data").Kind() == payload.KindSequence
}

// Render writes one block per element of data, each closed by a rule.
func (*PakNumRenderer) Render(p payload.Value, req Request) string {
	records, _ := p.Field("data").Items()

	var b builder
	b.banner("PAKISTAN NUMBER ANALYSIS REPORT", req.Query, reportWidth)

	if len(records) == 0 {
		b.line("No records found.")
		b.blank()
	}
	for i, r := range records {
		b.linef("RECORD %d FOR %s", i+1, req.Query)
		b.aligned([]field{
			{"Number", r.Field("number").TextOr(notAvailable)},
			{"Name", r.Field("name").TextOr(notAvailable)},
			{"CNIC", r.Field("cnic").TextOr(notAvailable)},
			{"Address", r.Field("address").TextOr(notAvailable)},
		})
		b.rule("-", reportWidth)
	}
	b.blank()

	b.footer(req.Timestamp(), pakNumSource, reportWidth)
	return b.String()
}
