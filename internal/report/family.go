package report

import (
	"github.com/nao1215/lookupreport/internal/payload"
)

// familySource is the data source label of family reports.
const familySource = "Family Info API"

// familyMemberKeys are the member list fields, in lookup priority.
var familyMemberKeys = []string{"memberDetailsList", "members", "family_members"}

// FamilyRenderer formats ration-card family records: household fields
// followed by one block per member.
type FamilyRenderer struct{}

// Name returns "family".
func (*FamilyRenderer) Name() string { return "family" }

// Match reports whether raw is a mapping with a non-empty
// memberDetailsList or members field.
func (*FamilyRenderer) Match(raw payload.Value) bool {
	if raw.Kind() != payload.KindMapping {
		return false
	}
	for _, key := range familyMemberKeys[:2] {
		if hasContent(raw.Field(key)) {
			return true
		}
	}
	return false
}

// hasContent reports whether v is truthy and not an empty mapping or
// sequence.
func hasContent(v payload.Value) bool {
	return v.Truthy() && !payload.IsNoData(v)
}

// Render formats a family record in a 56-column layout.
func (*FamilyRenderer) Render(p payload.Value, req Request) string {
	members := familyMembers(p)

	var b builder
	b.banner("FAMILY INFORMATION REPORT", req.Query, familyWidth)

	b.line("Address: " + p.Field("address").TextOr(notAvailable))
	b.line("District: " + p.Field("homeDistName").TextOr(notAvailable))
	b.line("State: " + p.Field("homeStateName").TextOr(notAvailable))
	b.line("Scheme: " + p.Field("schemeName").TextOr(notAvailable))
	b.line("Scheme ID: " + p.Field("schemeId").TextOr(notAvailable))
	b.line("RC ID: " + p.Field("rcId").TextOr(notAvailable))
	b.rule("-", familyWidth)
	b.linef("Total Family Members: %d", len(members))
	b.rule("-", familyWidth)
	b.blank()

	for i, m := range members {
		b.linef("MEMBER %d", i+1)
		b.line("Name: " + memberName(m))
		// "releationship_name" is the upstream spelling.
		b.line("Relation: " + m.Field("releationship_name").TextOr(notAvailable))
		b.line("UID Linked: " + m.Field("uid").TextOr(notAvailable))
		if i < len(members)-1 {
			b.rule("-", familyWidth)
		}
	}
	b.rule("-", familyWidth)
	b.blank()

	b.line("Report generated: " + req.Timestamp())
	b.line("Data Source: " + familySource)
	b.rule("-", familyWidth)
	b.blank()
	b.line(confidentialLine)

	return b.String()
}

// familyMembers returns the first truthy member list field, or nothing
// when that field is not a sequence.
func familyMembers(p payload.Value) []payload.Value {
	for _, key := range familyMemberKeys {
		v := p.Field(key)
		if !v.Truthy() {
			continue
		}
		items, _ := v.Items()
		return items
	}
	return nil
}

func memberName(m payload.Value) string {
	if v := m.Field("memberName"); v.Truthy() {
		return v.Text()
	}
	return m.Field("name").TextOr(notAvailable)
}
