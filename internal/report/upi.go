package report

import (
	"github.com/nao1215/lookupreport/internal/payload"
)

const upiSource = "UPI Verification API"

// UPIRenderer formats a UPI handle verification with its bank branch.
type UPIRenderer struct{}

// Name returns "upi".
func (*UPIRenderer) Name() string { return "upi" }

// Match reports whether raw.data is a mapping holding verify_chumt or
// bank_details_raw.
func (*UPIRenderer) Match(raw payload.Value) bool {
	data := raw.Field("data")
	if data.Kind() != payload.KindMapping {
		return false
	}
	return data.Has("verify_chumt") || data.Has("bank_details_raw")
}

// Render writes the verification block followed by the bank block.
func (*UPIRenderer) Render(p payload.Value, req Request) string {
	verify := p.Path("data", "verify_chumt")
	bank := p.Path("data", "bank_details_raw")

	var b builder
	b.banner("UPI ANALYSIS REPORT", req.Query, reportWidth)

	b.line("VERIFICATION")
	b.rule("-", reportWidth)
	b.aligned([]field{
		{"Name", verify.Field("name").TextOr(notAvailable)},
		{"VPA", verify.Field("vpa").TextOr(notAvailable)},
		{"IFSC", verify.Field("ifsc").TextOr(notAvailable)},
		{"Is Fampay User", yesNo(verify.Field("is_fampay_user"))},
		{"Is Merchant", yesNo(verify.Field("is_merchant"))},
	})
	b.blank()

	b.line("BANK DETAILS")
	b.rule("-", reportWidth)
	b.aligned([]field{
		{"Bank", bank.Field("BANK").TextOr(notAvailable)},
		{"Branch", bank.Field("BRANCH").TextOr(notAvailable)},
		{"Address", bank.Field("ADDRESS").TextOr(notAvailable)},
		{"City", bank.Field("CITY").TextOr(notAvailable)},
		{"State", bank.Field("STATE").TextOr(notAvailable)},
		{"IFSC", bank.Field("IFSC").TextOr(notAvailable)},
	})
	b.blank()

	b.footer(req.Timestamp(), upiSource, reportWidth)
	return b.String()
}

func yesNo(v payload.Value) string {
	if v.Truthy() {
		return "Yes"
	}
	return "No"
}
