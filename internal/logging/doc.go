// Package logging assembles the structured slog loggers used across vodmux.
//
// It owns the configurable console/JSON handlers and centralizes level and
// output plumbing. During a run the logger writes to the log file only,
// because the terminal is owned by the progress display. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape and routing guarantees.
package logging
