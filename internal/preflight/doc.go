// Package preflight provides readiness checks for the paths and the encoder
// binary an otterpack run depends on.
//
// The CLI "otterpack doctor" command runs RunAll after preparing resources
// and renders each Result as a status line. Individual checks are also usable
// on their own; none of them modify the filesystem.
package preflight
