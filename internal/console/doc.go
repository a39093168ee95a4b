// Package console renders the multi-row download progress display. A single
// Tracker serializes all terminal writes so concurrent jobs never interleave
// output. Interactive terminals get an in-place redrawn block of progress
// rows; non-interactive outputs fall back to sequential lines with per-row
// updates suppressed.
package console
