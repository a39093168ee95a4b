// Package ytdlp mediates access to the yt-dlp CLI used during fetching.
//
// It normalizes command invocation, parses download progress lines, filters
// retry spam out of the scrolling output, and exposes a testable interface
// for the fetch step.
//
// Prefer this package over ad-hoc exec.Command usage when interacting with
// yt-dlp so progress reporting and cancellation handling remain consistent.
package ytdlp
