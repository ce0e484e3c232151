// Package resources finds the bundled encoder and captures for a run.
//
// Resources come from one of two origins: a development folder next to the
// working directory, or a zip archive appended to the running executable.
// Archives are extracted into a private temporary directory whose lifetime is
// owned by the returned Resolved handle. Only top-level archive members are
// materialized.
package resources
