// Package history records completed conversion runs in a SQLite database so
// `otterpack history` can list what was converted, when, and how it ended.
//
// The database lives at <state_dir>/history.db and uses WAL journaling with a
// busy timeout; writes retry briefly on SQLITE_BUSY so concurrent runs against
// different output folders do not fail each other.
package history
