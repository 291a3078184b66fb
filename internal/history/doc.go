// Package history persists lookup outcomes in SQLite and derives the
// recent-search list and aggregate statistics from them.
//
// Each lookup is one row in the searches table. The rendered report is
// kept alongside a SHA3-256 digest so repeated lookups returning the same
// report can be recognised.
package history
