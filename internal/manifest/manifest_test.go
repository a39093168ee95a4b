package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseValidDescriptor(t *testing.T) {
	payload := `{
		"manifest_url": "https://vod.example.com/manifest.m3u8",
		"subtitles_url": "https://vod.example.com/subs.xml",
		"episode_code": "S01E02",
		"title": "Wielka Woda",
		"episode_title": "Flood Warning",
		"description": "The river rises."
	}`
	episode, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if episode.ManifestURL != "https://vod.example.com/manifest.m3u8" {
		t.Fatalf("unexpected manifest URL: %s", episode.ManifestURL)
	}
	if episode.ShowTitle() != "Wielka Woda" || episode.EpisodeName() != "Flood Warning" {
		t.Fatalf("unexpected titles: %s / %s", episode.ShowTitle(), episode.EpisodeName())
	}
	if episode.Label() != "S01E02" {
		t.Fatalf("unexpected label: %s", episode.Label())
	}
	if episode.OutputStem() != "Wielka Woda_S01E02" {
		t.Fatalf("unexpected stem: %s", episode.OutputStem())
	}
}

func TestParseRejectsBadLocators(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "missing manifest_url",
			payload: `{"subtitles_url": "https://example.com/s.xml"}`,
			wantErr: "missing required field manifest_url",
		},
		{
			name:    "missing subtitles_url",
			payload: `{"manifest_url": "https://example.com/m.m3u8"}`,
			wantErr: "missing required field subtitles_url",
		},
		{
			name:    "non-http manifest_url",
			payload: `{"manifest_url": "ftp://example.com/m", "subtitles_url": "https://example.com/s.xml"}`,
			wantErr: "invalid manifest_url",
		},
		{
			name:    "non-http subtitles_url",
			payload: `{"manifest_url": "https://example.com/m.m3u8", "subtitles_url": "file:///s.xml"}`,
			wantErr: "invalid subtitles_url",
		},
		{
			name:    "malformed JSON",
			payload: `{"manifest_url": `,
			wantErr: "invalid JSON",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.payload))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSparseDescriptorFallbacks(t *testing.T) {
	payload := `{"manifest_url": "https://example.com/m.m3u8", "subtitles_url": "https://example.com/s.xml"}`
	episode, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if episode.ShowTitle() != "video" {
		t.Fatalf("expected default show title, got %s", episode.ShowTitle())
	}
	if episode.EpisodeName() != "Unknown" {
		t.Fatalf("expected default episode name, got %s", episode.EpisodeName())
	}
	if episode.Label() != "video" {
		t.Fatalf("expected label fallback, got %s", episode.Label())
	}
	if episode.OutputStem() != "video" {
		t.Fatalf("expected default stem, got %s", episode.OutputStem())
	}
}

func TestOutputStemSanitizesTitle(t *testing.T) {
	episode := Episode{Title: "Show: One?", EpisodeCode: "S02E01"}
	if got := episode.OutputStem(); got != "Show- One_S02E01" {
		t.Fatalf("unexpected stem: %q", got)
	}
}

func TestOutputStemBoundsLength(t *testing.T) {
	episode := Episode{Title: strings.Repeat("x", 400), EpisodeCode: "S01E01"}
	stem := episode.OutputStem()
	if len(stem) > 180 {
		t.Fatalf("stem too long: %d bytes", len(stem))
	}
	if !strings.HasPrefix(stem, "xxx") {
		t.Fatalf("unexpected stem: %q", stem)
	}
}

func TestMetadataOrderAndOmission(t *testing.T) {
	episode := Episode{
		Title:        "Wielka Woda",
		EpisodeCode:  "S01E02",
		EpisodeTitle: "Flood Warning",
		Description:  "The river rises.",
	}
	pairs := episode.Metadata()
	wantKeys := []string{"title", "show", "episode_id", "description", "comment"}
	if len(pairs) != len(wantKeys) {
		t.Fatalf("expected %d pairs, got %+v", len(wantKeys), pairs)
	}
	for idx, key := range wantKeys {
		if pairs[idx].Key != key {
			t.Fatalf("pair %d: expected key %s, got %s", idx, key, pairs[idx].Key)
		}
	}
	if pairs[0].Value != "Flood Warning" || pairs[1].Value != "Wielka Woda" {
		t.Fatalf("unexpected title/show values: %+v", pairs[:2])
	}
	if pairs[3].Value != pairs[4].Value {
		t.Fatalf("description and comment should match: %+v", pairs[3:])
	}

	sparse := Episode{EpisodeCode: "S01E03"}
	pairs = sparse.Metadata()
	if len(pairs) != 2 || pairs[0].Key != "title" || pairs[1].Key != "episode_id" {
		t.Fatalf("unexpected sparse pairs: %+v", pairs)
	}
	if pairs[0].Value != "Unknown" {
		t.Fatalf("expected title fallback in metadata, got %q", pairs[0].Value)
	}
}

func TestDiscoverSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "episode.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err := Discover(path)
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestDiscoverDirectorySortsJSONFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 descriptor files, got %v", files)
	}
	if filepath.Base(files[0]) != "a.json" || filepath.Base(files[1]) != "b.json" {
		t.Fatalf("expected lexical order, got %v", files)
	}
}

func TestDiscoverRejectsMissingAndEmpty(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing path")
	}
	empty := t.TempDir()
	_, err := Discover(empty)
	if err == nil || !strings.Contains(err.Error(), "no JSON files") {
		t.Fatalf("expected empty-directory error, got %v", err)
	}
}

func TestLoadFileSetsSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ep.json")
	payload := `{"manifest_url": "https://example.com/m.m3u8", "subtitles_url": "https://example.com/s.xml"}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	episode, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if episode.Source != path {
		t.Fatalf("expected source %s, got %s", path, episode.Source)
	}
}

func TestLoadFileReportsFileName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "broken.json") {
		t.Fatalf("expected error naming the file, got %v", err)
	}
}
