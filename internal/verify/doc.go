// Package verify checks muxed output files before publication. The engine
// probes container metadata with ffprobe and sample-decodes the head and
// tail of the file so corrupt downloads are caught without decoding whole
// episodes.
package verify
