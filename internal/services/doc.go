// Package services defines shared utilities consumed by the pipeline steps
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp episode labels, step names, and run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (fatal vs recoverable) consistent across steps.
//
// The subpackages wrap the external tools vodmux shells out to (yt-dlp,
// ffmpeg, ttconv) behind small testable clients. Clients return plain
// errors; the pipeline decides classification by wrapping them with the
// markers defined here.
package services
