package config

import (
	"errors"
	"fmt"

	"vodmux/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDownloads(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateVerification(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDownloads() error {
	if c.Downloads.MaxActive < 1 {
		return errors.New("downloads.max_active must be positive")
	}
	if c.Downloads.LaunchStaggerSeconds < 0 {
		return errors.New("downloads.launch_stagger_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if language.Normalize(c.Subtitles.Language) == "" {
		return fmt.Errorf("subtitles.language: unrecognized language code %q", c.Subtitles.Language)
	}
	if c.Subtitles.RequestTimeout <= 0 {
		return errors.New("subtitles.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateVerification() error {
	if err := ensurePositiveMap(map[string]int{
		"verification.sample_seconds":         c.Verification.SampleSeconds,
		"verification.decode_timeout_seconds": c.Verification.DecodeTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Verification.DecodeTimeoutSeconds <= c.Verification.SampleSeconds {
		return errors.New("verification.decode_timeout_seconds must be greater than verification.sample_seconds")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
