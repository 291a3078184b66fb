// Package report turns lookup API responses into plain-text reports.
//
// An Engine dispatches a raw response to a Renderer. Categories with a
// dedicated renderer (family, vehicle, fampay, paknum, upi) are probed for
// a structural fingerprint on the raw response first; everything else is
// unwrapped with the payload Resolver and rendered by the Generic renderer
// as aligned "Label: value" records.
//
// Rendering never fails. Missing or malformed fields degrade to "N/A", a
// skipped line, or one of the "No details found" sentinels. The only
// non-deterministic line in a report is "Report generated: ...", and the
// clock behind it is injectable with WithClock.
//
// Writers (TextWriter, JSONWriter, MultiWriter) deliver a rendered
// Document to an io.Writer.
package report
