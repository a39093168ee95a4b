package ffprobe

import (
	"encoding/json"
	"math"
	"testing"
)

const sampleProbeOutput = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2, "sample_rate": "48000"},
    {"index": 2, "codec_name": "mov_text", "codec_type": "subtitle", "tags": {"language": "pol"}}
  ],
  "format": {
    "filename": "Ranczo_S01E01.mp4",
    "nb_streams": 3,
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "duration": "2731.433000",
    "size": "734003200",
    "bit_rate": "2149675"
  }
}`

func TestResultDecodesProbeOutput(t *testing.T) {
	var result Result
	if err := json.Unmarshal([]byte(sampleProbeOutput), &result); err != nil {
		t.Fatalf("unmarshal probe output: %v", err)
	}

	if got := result.VideoStreamCount(); got != 1 {
		t.Fatalf("video streams = %d, want 1", got)
	}
	if got := result.AudioStreamCount(); got != 1 {
		t.Fatalf("audio streams = %d, want 1", got)
	}
	if got := result.SubtitleStreamCount(); got != 1 {
		t.Fatalf("subtitle streams = %d, want 1", got)
	}

	subs := result.SubtitleStreams()
	if len(subs) != 1 || subs[0].CodecName != "mov_text" {
		t.Fatalf("unexpected subtitle streams: %+v", subs)
	}
	if subs[0].Tags["language"] != "pol" {
		t.Fatalf("expected language tag, got %+v", subs[0].Tags)
	}

	if got := result.DurationSeconds(); got != 2731.433 {
		t.Fatalf("duration = %v, want 2731.433", got)
	}
	if got := result.SizeBytes(); got != 734003200 {
		t.Fatalf("size = %d, want 734003200", got)
	}
	if got := result.BitRate(); got != 2149675 {
		t.Fatalf("bitrate = %d, want 2149675", got)
	}
}

func TestResultHandlesMissingNumbers(t *testing.T) {
	tests := []struct {
		name   string
		format Format
	}{
		{"empty fields", Format{}},
		{"unparseable duration", Format{Duration: "bad", Size: "-1", BitRate: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Result{Format: tt.format}
			duration := result.DurationSeconds()
			if duration != 0 && !math.IsNaN(duration) {
				t.Fatalf("duration = %v, want 0 or NaN", duration)
			}
			if result.SizeBytes() != 0 {
				t.Fatalf("size = %d, want 0", result.SizeBytes())
			}
			if result.BitRate() != 0 {
				t.Fatalf("bitrate = %d, want 0", result.BitRate())
			}
		})
	}
}
