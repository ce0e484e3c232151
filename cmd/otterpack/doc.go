// Package main hosts the otterpack CLI entrypoint and command graph.
//
// The Cobra-based command tree prepares the bundled resources, runs
// conversions while rendering progress, and exposes diagnostics (inspect,
// doctor), run history, and configuration scaffolding. Configuration
// resolution and logger setup are centralized in commandContext so
// subcommands only deal with presentation.
package main
