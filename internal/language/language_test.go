package language

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		{"pl", "pl"},
		// 3-letter codes collapse to 2-letter equivalents
		{"eng", "en"},
		{"pol", "pl"},
		{"spa", "es"},
		{"fra", "fr"},
		{"deu", "de"},
		{"jpn", "ja"},
		// Full BCP 47 tags keep only the base
		{"en-US", "en"},
		{"pl-PL", "pl"},
		// Unknown input
		{"xx", ""},
		{"klingon", ""},
		// Empty
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Normalize(tt.input)
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"pl", "pol"},
		{"es", "spa"},
		{"fr", "fra"},
		{"de", "deu"},
		{"pol", "pol"},
		{"eng", "eng"},
		{"en-GB", "eng"},
		{"xx", "und"},
		{"", "und"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToISO3(tt.input)
			if result != tt.expected {
				t.Errorf("ToISO3(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"eng", "English"},
		{"pl", "Polish"},
		{"pol", "Polish"},
		{"es", "Spanish"},
		{"fr", "French"},
		{"de", "German"},
		{"ja", "Japanese"},
		{"", "Unknown"},
		{"xx", "XX"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := DisplayName(tt.input)
			if result != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExtractFromTags(t *testing.T) {
	tests := []struct {
		name     string
		tags     map[string]string
		expected string
	}{
		{"nil tags", nil, ""},
		{"empty tags", map[string]string{}, ""},
		{"lowercase key", map[string]string{"language": "pol"}, "pol"},
		{"uppercase key", map[string]string{"LANGUAGE": "POL"}, "pol"},
		{"lang key", map[string]string{"lang": "pl"}, "pl"},
		{"ietf key", map[string]string{"language_ietf": "pl-PL"}, "pl-pl"},
		{"null bytes stripped", map[string]string{"language": "pol\x00"}, "pol"},
		{"empty value", map[string]string{"language": ""}, ""},
		{"priority: language over LANG", map[string]string{"language": "fr", "LANG": "en"}, "fr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractFromTags(tt.tags)
			if result != tt.expected {
				t.Errorf("ExtractFromTags(%v) = %q, want %q", tt.tags, result, tt.expected)
			}
		})
	}
}
