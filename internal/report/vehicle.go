package report

import (
	"strings"
	"time"

	"github.com/nao1215/lookupreport/internal/payload"
)

// vehicleSource is the data source label of vehicle reports.
const vehicleSource = "Vehicle Lookup API"

// currencyGlyph prefixes challan amounts.
const currencyGlyph = "₹"

// vehicleAttributes lists the registration attributes in display order.
var vehicleAttributes = []struct {
	label string
	key   string
}{
	{"Registration No", "rc_number"},
	{"Owner Name", "owner_name"},
	{"Make/Model", "maker_model"},
	{"Vehicle Class", "vehicle_class"},
	{"Fuel Type", "fuel_type"},
	{"Registration Date", "registration_date"},
	{"RTO", "rto_name"},
	{"RC Status", "rc_status"},
	{"Fitness Upto", "fitness_upto"},
	{"Insurance Upto", "insurance_upto"},
	{"Chassis No", "chassis_number"},
	{"Engine No", "engine_number"},
	{"Financier", "financer"},
}

// challanDateLayouts are the date formats accepted for challan_date.
var challanDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006 15:04:05",
	"02-01-2006",
}

// VehicleRenderer formats registration details and challan history.
type VehicleRenderer struct{}

// Name returns "vehicle".
func (*VehicleRenderer) Name() string { return "vehicle" }

// Match reports whether raw is a mapping with a truthy vehicle_info.
func (*VehicleRenderer) Match(raw payload.Value) bool {
	return raw.Kind() == payload.KindMapping && raw.Field("vehicle_info").Truthy()
}

// Render formats a vehicle record in a 70-column layout.
func (*VehicleRenderer) Render(p payload.Value, req Request) string {
	var b builder
	b.banner("VEHICLE INFORMATION REPORT", req.Query, reportWidth)

	b.line("VEHICLE DETAILS")
	b.rule("-", reportWidth)
	if info := p.Field("vehicle_info"); info.Kind() == payload.KindMapping {
		b.alignedTo(vehicleFields(info), vehicleLabelWidth()+2)
	} else {
		b.line("No vehicle details found.")
	}
	b.blank()

	b.line("CHALLAN HISTORY")
	b.rule("-", reportWidth)
	challans, _ := p.Path("challan_info", "data").Items()
	if len(challans) == 0 {
		b.line("No challans found for this vehicle.")
	} else {
		b.linef("Total Challans: %d", len(challans))
		b.blank()
		for i, c := range challans {
			b.linef("CHALLAN %d", i+1)
			b.aligned(challanFields(c, req.Now.Location()))
			if i < len(challans)-1 {
				b.rule(".", reportWidth)
			}
		}
	}
	b.blank()

	b.footer(req.Timestamp(), vehicleSource, reportWidth)
	b.line(confidentialLine)

	return b.String()
}

// vehicleLabelWidth is the widest attribute label.
func vehicleLabelWidth() int {
	w := 0
	for _, a := range vehicleAttributes {
		w = max(w, width(a.label))
	}
	return w
}

// vehicleFields returns the attributes that carry a usable value.
func vehicleFields(info payload.Value) []field {
	var fields []field
	for _, a := range vehicleAttributes {
		v, ok := info.Get(a.key)
		if !ok || !usable(v) {
			continue
		}
		fields = append(fields, field{label: a.label, value: v.Text()})
	}
	return fields
}

// usable reports whether v is non-null and its text is not empty, "-"
// or "nan" in any case. The text is compared as-is.
func usable(v payload.Value) bool {
	if v.IsNull() {
		return false
	}
	s := v.Text()
	return s != "" && s != "-" && !strings.EqualFold(s, "nan")
}

func challanFields(c payload.Value, loc *time.Location) []field {
	amount := notAvailable
	if total := c.Path("amount", "total"); total.Truthy() {
		amount = currencyGlyph + total.Text()
	}

	return []field{
		{"Challan No", c.Field("challan_no").TextOr(notAvailable)},
		{"Date", challanDate(c.Field("challan_date"), loc)},
		{"Offence", offence(c)},
		{"Amount", amount},
		{"Status", c.Field("challan_status").TextOr(notAvailable)},
	}
}

// challanDate reformats a challan timestamp as DD/MM/YYYY, HH:MM:SS in
// loc. Values that do not parse are returned as-is.
func challanDate(v payload.Value, loc *time.Location) string {
	if !v.Truthy() {
		return notAvailable
	}
	s := strings.TrimSpace(v.Text())
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range challanDateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc).Format(timestampLayout)
		}
	}
	return v.Text()
}

// offence returns the first entry of violations.details.
func offence(c payload.Value) string {
	first := c.Path("violations", "details").Index(0)
	if first.Kind() == payload.KindMapping {
		for _, key := range []string{"offence", "offence_name", "description"} {
			if v := first.Field(key); v.Truthy() {
				return v.Text()
			}
		}
		return notAvailable
	}
	return first.TextOr(notAvailable)
}
