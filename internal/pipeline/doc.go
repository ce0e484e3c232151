// Package pipeline drives one otterpack run from resource discovery to the
// final conversion event.
//
// A Session walks the run state machine (idle, locating, extracting, ready,
// converting, then done or failed), owns the extracted resource directory for
// the lifetime of the run, serializes runs that target the same output folder
// through a file lock, and records each finished run in the history store.
package pipeline
