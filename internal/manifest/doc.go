// Package manifest parses episode descriptor files into jobs the pipeline
// can run.
//
// A descriptor is a small JSON document produced outside vodmux, one per
// episode, carrying the manifest URL for the video stream, the TTML subtitle
// URL, and optional naming metadata (episode code, show title, episode title,
// description). Discover resolves a file-or-directory argument into the list
// of descriptor files, LoadFile parses and validates one of them, and the
// Episode accessors derive everything downstream steps need: the sanitized
// output filename stem, the progress-row label, and the ordered container
// metadata pairs handed to the mux step.
//
// Validation is strict only about the two locator fields; everything else
// falls back to a neutral default so a sparse descriptor still produces a
// usable job. A descriptor that fails validation rejects that one job and
// never aborts its siblings.
package manifest
