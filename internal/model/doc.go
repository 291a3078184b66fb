// Package model defines the unit of work that flows through the lookup
// pipeline. It sits between the pipeline steps so that validation, fetch,
// rendering and history recording share one record without importing each
// other.
package model
