// Package ttconv mediates access to the ttconv CLI used for subtitle
// format conversion.
//
// The only supported transformation is TTML in, WebVTT out, matching what
// the mux step can embed as mov_text. Conversion failures are recoverable
// at the pipeline level: the job continues without subtitles.
package ttconv
