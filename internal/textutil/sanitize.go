package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeFileName makes a descriptor-derived title usable as a file name.
// Path separators, colons, and asterisks become dashes, other reserved and
// control characters are dropped, and the result is trimmed of surrounding
// whitespace and trailing dots. Returns "" when nothing usable remains.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			b.WriteByte('-')
		case r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	return strings.TrimRight(out, ". ")
}

// TruncateStem caps a filename stem at maxBytes without splitting a rune
// and trims any separator left dangling at the cut. Stems grow suffixes
// like "_muxed.mp4", so callers pass a bound below the filesystem name
// limit.
func TruncateStem(stem string, maxBytes int) string {
	if maxBytes <= 0 || len(stem) <= maxBytes {
		return stem
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(stem[cut]) {
		cut--
	}
	return strings.TrimRight(stem[:cut], " ._-")
}
