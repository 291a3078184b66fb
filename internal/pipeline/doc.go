// Package pipeline runs a lookup through its steps: validate, fetch,
// render and record.
//
// Each step receives the shared model.Lookup and may modify it. A step
// returns an error only when the lookup cannot continue; expected outcomes
// such as "no data found" are recorded on the Lookup instead.
//
// BatchProcessor runs several lookups concurrently with errgroup and keeps
// the results in input order.
package pipeline
