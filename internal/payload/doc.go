// Package payload models the loosely-structured JSON bodies returned by
// upstream lookup APIs and locates the substantive data inside them.
//
// A response is decoded into a Value, a tagged union of
// {Null, Bool, Number, String, Sequence, Mapping}. Mappings keep the key
// order of the original document so that reports list fields in the order
// the upstream API sent them.
//
// The Resolver unwraps a single level of envelope (data, result, response,
// details, Data when Success is true, aadhaar) using an ordered list of
// Rules. IsEmpty and Explain describe when, and why, a payload carries no
// data.
//
// Everything in this package is pure: no I/O, no shared mutable state.
// Values are immutable after construction and safe for concurrent reads.
package payload
