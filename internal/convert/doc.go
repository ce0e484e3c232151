// Package convert plans and executes a conversion run over bundled captures.
//
// A run enumerates the FLAC captures under the resource directory, builds one
// encoder invocation per capture (or a single mixing invocation), executes
// them strictly in order through a Runner, and optionally writes a project
// manifest. Progress is reported through an Emitter that always delivers
// exactly one terminal event.
package convert
