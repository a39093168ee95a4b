package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vodmux/internal/textutil"
)

// Episode is one job descriptor parsed from an episode JSON file.
type Episode struct {
	ManifestURL  string `json:"manifest_url"`
	SubtitlesURL string `json:"subtitles_url"`
	EpisodeCode  string `json:"episode_code,omitempty"`
	Title        string `json:"title,omitempty"`
	EpisodeTitle string `json:"episode_title,omitempty"`
	Description  string `json:"description,omitempty"`

	// Source records the descriptor file this episode was parsed from.
	Source string `json:"-"`
}

// MetadataPair is one container-level metadata entry handed to the mux step.
type MetadataPair struct {
	Key   string
	Value string
}

// Discover resolves path to the descriptor files it names. A file path
// yields itself; a directory yields its *.json entries in lexical order.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	matches, err := filepath.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no JSON files found in %s", path)
	}
	return matches, nil
}

// LoadFile parses and validates a single descriptor file.
func LoadFile(path string) (Episode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Episode{}, err
	}
	episode, err := Parse(data)
	if err != nil {
		return Episode{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	episode.Source = path
	return episode, nil
}

// Parse decodes a descriptor from JSON and validates it.
func Parse(data []byte) (Episode, error) {
	var episode Episode
	if err := json.Unmarshal(data, &episode); err != nil {
		return Episode{}, fmt.Errorf("invalid JSON: %w", err)
	}
	episode.normalize()
	if err := episode.Validate(); err != nil {
		return Episode{}, err
	}
	return episode, nil
}

func (e *Episode) normalize() {
	e.ManifestURL = strings.TrimSpace(e.ManifestURL)
	e.SubtitlesURL = strings.TrimSpace(e.SubtitlesURL)
	e.EpisodeCode = strings.TrimSpace(e.EpisodeCode)
	e.Title = strings.TrimSpace(e.Title)
	e.EpisodeTitle = strings.TrimSpace(e.EpisodeTitle)
	e.Description = strings.TrimSpace(e.Description)
}

// Validate checks the two required locator fields. Naming fields are
// optional and fall back to defaults at use sites.
func (e Episode) Validate() error {
	if err := validateLocator("manifest_url", e.ManifestURL); err != nil {
		return err
	}
	return validateLocator("subtitles_url", e.SubtitlesURL)
}

func validateLocator(field, value string) error {
	if value == "" {
		return fmt.Errorf("missing required field %s", field)
	}
	if !strings.HasPrefix(value, "http") {
		return fmt.Errorf("invalid %s: must start with http or https", field)
	}
	return nil
}

// ShowTitle returns the show title, defaulting to "video" for sparse
// descriptors.
func (e Episode) ShowTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return "video"
}

// EpisodeName returns the per-episode title, defaulting to "Unknown".
func (e Episode) EpisodeName() string {
	if e.EpisodeTitle != "" {
		return e.EpisodeTitle
	}
	return "Unknown"
}

// Label identifies the episode in progress rows and log lines.
func (e Episode) Label() string {
	if e.EpisodeCode != "" {
		return e.EpisodeCode
	}
	return e.ShowTitle()
}

// maxStemBytes keeps derived names (stem plus scratch suffixes) under
// common filesystem name limits.
const maxStemBytes = 180

// OutputStem derives the filename stem shared by scratch and final files:
// "<title>_<code>" when an episode code is present, "<title>" otherwise,
// sanitized for the filesystem and bounded in length.
func (e Episode) OutputStem() string {
	stem := e.ShowTitle()
	if e.EpisodeCode != "" {
		stem += "_" + e.EpisodeCode
	}
	stem = textutil.SanitizeFileName(stem)
	stem = textutil.TruncateStem(stem, maxStemBytes)
	if stem == "" {
		return "video"
	}
	return stem
}

// Metadata returns the container metadata pairs for the mux step in emission
// order. Pairs with empty values are omitted.
func (e Episode) Metadata() []MetadataPair {
	candidates := []MetadataPair{
		{Key: "title", Value: e.EpisodeName()},
		{Key: "show", Value: e.Title},
		{Key: "episode_id", Value: e.EpisodeCode},
		{Key: "description", Value: e.Description},
		{Key: "comment", Value: e.Description},
	}
	pairs := make([]MetadataPair, 0, len(candidates))
	for _, pair := range candidates {
		if pair.Value != "" {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}
