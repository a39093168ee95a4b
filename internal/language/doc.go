// Package language normalizes subtitle language tags.
//
// Descriptors and configuration accept two-letter (ISO 639-1), three-letter
// (ISO 639-2/T), or full BCP 47 forms. Muxed text tracks always carry the
// three-letter form, which is what MP4 stream metadata expects.
package language
