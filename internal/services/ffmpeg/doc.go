// Package ffmpeg mediates access to the ffmpeg CLI for muxing and decode
// sampling.
//
// The mux path combines a fetched MP4, an optional WebVTT subtitle track,
// and ordered container metadata with pure stream copy. The decode path
// runs bounded null-muxer passes over a file so verification can detect
// corrupt streams without writing output.
//
// Prefer this package over ad-hoc exec.Command usage when interacting with
// ffmpeg so argument shapes and stderr capture remain consistent.
package ffmpeg
