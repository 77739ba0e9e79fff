// Package logging assembles the structured slog loggers used across
// civicintel components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so adapters and pipeline stages
// tag log lines with meeting IDs, jurisdictions, and stage names in a
// consistent shape. A no-op logger is provided for tests and wiring code
// that cannot fail.
package logging
