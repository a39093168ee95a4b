// Package subtitles retrieves TTML subtitle documents over HTTP and converts
// them to WebVTT for muxing. Subtitle failures are reported to callers as
// plain errors so the pipeline can degrade to a subtitle-free output.
package subtitles
