package report

import (
	"strings"

	"github.com/nao1215/lookupreport/internal/payload"
)

const fampaySource = "Fampay Lookup API"

// FampayRenderer formats a Fampay account profile.
type FampayRenderer struct{}

// Name returns "fampay".
func (*FampayRenderer) Name() string { return "fampay" }

// Match reports whether raw is a mapping whose user field is a mapping.
func (*FampayRenderer) Match(raw payload.Value) bool {
	return raw.Kind() == payload.KindMapping && raw.Field("user").Kind() == payload.KindMapping
}

// Render formats the profile held in the user field.
func (*FampayRenderer) Render(p payload.Value, req Request) string {
	user := p.Field("user")

	var b builder
	b.banner("FAMPAY ANALYSIS REPORT", req.Query, reportWidth)
	b.aligned([]field{
		{"First Name", user.Field("first_name").TextOr(notAvailable)},
		{"Last Name", user.Field("last_name").TextOr(notAvailable)},
		{"Display Username", user.Field("display_username").TextOr(notAvailable)},
		{"Username", user.Field("username").TextOr(notAvailable)},
		{"Phone", phone(user.Field("contact"))},
		{"VPA", user.Path("fvpas").Index(0).Path("vpa", "address").TextOr(notAvailable)},
		{"Image", user.Field("image").TextOr(notAvailable)},
	})
	b.blank()
	b.footer(req.Timestamp(), fampaySource, reportWidth)

	return b.String()
}

// phone joins the dialling code and number as "+91 9876543210".
func phone(contact payload.Value) string {
	number := contact.Field("phone_number").TextOr(notAvailable)
	code := contact.Field("code")
	if !code.Truthy() {
		return number
	}
	return "+" + strings.TrimPrefix(code.Text(), "+") + " " + number
}
