package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var englishNames = display.English.Languages()

// Normalize canonicalizes a language code to its ISO 639-1 base subtag.
// Three-letter codes with a two-letter equivalent collapse to it ("pol"
// becomes "pl"). Returns empty string for unrecognized input.
func Normalize(code string) string {
	tag, ok := parse(code)
	if !ok {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// ToISO3 converts a language code to its ISO 639-2/T three-letter form,
// the shape ffmpeg stream metadata expects. Returns "und" for unrecognized
// input.
func ToISO3(code string) string {
	tag, ok := parse(code)
	if !ok {
		return "und"
	}
	base, _ := tag.Base()
	return base.ISO3()
}

// DisplayName returns the English name for a recognized code.
// Returns "Unknown" for empty input, or the uppercased code for
// unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, ok := parse(trimmed)
	if !ok {
		return strings.ToUpper(trimmed)
	}
	if name := englishNames.Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}

// ExtractFromTags extracts and normalizes the language from stream metadata
// tags. Checks common tag keys: language, LANGUAGE, Language, language_ietf,
// lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\x00", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}

func parse(code string) (xlanguage.Tag, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return xlanguage.Und, false
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return xlanguage.Und, false
	}
	base, _ := tag.Base()
	if base.String() == "und" {
		return tag, false
	}
	return tag, true
}
