package config

import (
	"fmt"
	"os"
	"strings"

	"vodmux/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownloads()
	c.normalizeSubtitles()
	c.normalizeVerification()
	c.normalizeTools()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownloads() {
	if c.Downloads.MaxActive == 0 {
		c.Downloads.MaxActive = defaultMaxActive
	}
	if c.Downloads.LaunchStaggerSeconds < 0 {
		c.Downloads.LaunchStaggerSeconds = defaultLaunchStaggerSeconds
	}
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.Language = strings.TrimSpace(c.Subtitles.Language)
	if c.Subtitles.Language == "" {
		c.Subtitles.Language = defaultSubtitleLanguage
	}
	if normalized := language.Normalize(c.Subtitles.Language); normalized != "" {
		c.Subtitles.Language = normalized
	}
	if c.Subtitles.RequestTimeout <= 0 {
		c.Subtitles.RequestTimeout = defaultSubtitleTimeout
	}
}

func (c *Config) normalizeVerification() {
	if c.Verification.SampleSeconds == 0 {
		c.Verification.SampleSeconds = defaultSampleSeconds
	}
	if c.Verification.DecodeTimeoutSeconds == 0 {
		c.Verification.DecodeTimeoutSeconds = defaultDecodeTimeoutSeconds
	}
}

func (c *Config) normalizeTools() {
	c.Tools.Ytdlp = strings.TrimSpace(c.Tools.Ytdlp)
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.TT = strings.TrimSpace(c.Tools.TT)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("VODMUX_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
