// Package logging assembles structured slog loggers and formatting helpers used
// by the roadmap CLI and the roadmapd daemon.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers and tracker
// operations can tag log lines with module and request ids. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
