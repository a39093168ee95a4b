package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vodmux/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.ScratchDir != filepath.Join(tempHome, "tmp") {
		t.Fatalf("unexpected scratch dir: %q", cfg.Paths.ScratchDir)
	}
	wantOutput, err := filepath.Abs(".")
	if err != nil {
		t.Fatalf("resolve working directory: %v", err)
	}
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "vodmux", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Downloads.MaxActive != 6 {
		t.Fatalf("unexpected max active: %d", cfg.Downloads.MaxActive)
	}
	if cfg.Downloads.LaunchStaggerSeconds != 2 {
		t.Fatalf("unexpected launch stagger: %d", cfg.Downloads.LaunchStaggerSeconds)
	}
	if cfg.Downloads.KeepFiles {
		t.Fatal("expected keep_files disabled by default")
	}
	if cfg.Subtitles.Language != "pl" {
		t.Fatalf("unexpected subtitle language: %q", cfg.Subtitles.Language)
	}
	if cfg.Verification.SampleSeconds != 30 {
		t.Fatalf("unexpected sample seconds: %d", cfg.Verification.SampleSeconds)
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected empty ntfy topic, got %q", cfg.Notifications.NtfyTopic)
	}
	if !cfg.Notifications.RunSummary || !cfg.Notifications.JobFailures {
		t.Fatal("expected notification toggles enabled by default")
	}
	if cfg.YtdlpBinary() != "yt-dlp" || cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" || cfg.TTBinary() != "tt" {
		t.Fatal("expected default tool names")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ScratchDir, cfg.Paths.LogDir, cfg.Paths.OutputDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vodmux.toml")

	type payload struct {
		Paths struct {
			ScratchDir string `toml:"scratch_dir"`
		} `toml:"paths"`
		Downloads struct {
			MaxActive int `toml:"max_active"`
		} `toml:"downloads"`
		Subtitles struct {
			Language string `toml:"language"`
		} `toml:"subtitles"`
		Tools struct {
			Ytdlp string `toml:"ytdlp"`
		} `toml:"tools"`
	}
	custom := payload{}
	custom.Paths.ScratchDir = filepath.Join(tempDir, "scratch")
	custom.Downloads.MaxActive = 3
	custom.Subtitles.Language = "eng"
	custom.Tools.Ytdlp = "/opt/yt-dlp/yt-dlp"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.ScratchDir != filepath.Join(tempDir, "scratch") {
		t.Fatalf("unexpected scratch dir: %q", cfg.Paths.ScratchDir)
	}
	if cfg.Downloads.MaxActive != 3 {
		t.Fatalf("expected max active 3, got %d", cfg.Downloads.MaxActive)
	}
	if cfg.Subtitles.Language != "en" {
		t.Fatalf("expected language normalized to en, got %q", cfg.Subtitles.Language)
	}
	if cfg.YtdlpBinary() != "/opt/yt-dlp/yt-dlp" {
		t.Fatalf("expected ytdlp override, got %q", cfg.YtdlpBinary())
	}
}

func TestNtfyTopicEnvFallback(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VODMUX_NTFY_TOPIC", "env-topic")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "env-topic" {
		t.Fatalf("expected topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your-ntfy-topic-here") {
		t.Fatalf("sample config missing placeholder topic: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.ScratchDir, "tmp") {
		t.Fatalf("expected scratch dir in sample, got %q", cfg.Paths.ScratchDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Downloads.MaxActive = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max_active")
	}

	cfg = config.Default()
	cfg.Subtitles.Language = "xx"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unrecognized language")
	}

	cfg = config.Default()
	cfg.Verification.SampleSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive sample window")
	}

	cfg = config.Default()
	cfg.Verification.DecodeTimeoutSeconds = cfg.Verification.SampleSeconds
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when decode timeout <= sample window")
	}

	cfg = config.Default()
	cfg.Notifications.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive notification timeout")
	}
}
