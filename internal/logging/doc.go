// Package logging builds the slog loggers used by otterpack.
//
// Console output is a compact key=value line for terminals; JSON output is
// intended for log files and machine consumption. When a log file is
// configured both handlers run side by side. Context helpers attach the run
// identifier and pipeline stage so every line of a conversion can be
// correlated.
package logging
