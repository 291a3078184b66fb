// Package category holds the registry of lookup categories.
//
// Each category tag (mobile, aadhaar, family, gst, telegram, ifsc, vehicle,
// fampay, paknum, upi) maps to a Spec: the upstream endpoint template,
// accepted query length, an input transform and the user-facing messages.
// The renderer only needs the tag itself; the rest of the Spec is consumed
// by the lookup layer.
package category
