package ttconv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// commandRunner executes an external command and returns its stderr output.
type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

// Converter defines the behaviour required by the subtitle step.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
}

// Option configures the client.
type Option func(*Client)

// WithCommandRunner injects a custom command runner (primarily for tests).
func WithCommandRunner(run commandRunner) Option {
	return func(c *Client) {
		if run != nil {
			c.run = run
		}
	}
}

// Client wraps the ttconv CLI for TTML to WebVTT conversion.
type Client struct {
	binary string
	run    commandRunner
}

// New constructs a ttconv client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("tt binary required")
	}
	client := &Client{
		binary: binary,
		run:    defaultCommandRunner,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Convert transforms a TTML document into WebVTT.
func (c *Client) Convert(ctx context.Context, inputPath, outputPath string) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("subtitle source not found: %w", err)
	}

	args := []string{
		"convert",
		"-i", inputPath,
		"-o", outputPath,
		"--itype", "TTML",
		"--otype", "VTT",
	}
	stderr, err := c.run(ctx, c.binary, args...)
	if err != nil {
		_ = os.Remove(outputPath)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ttconv convert: %w: %s", err, strings.TrimSpace(stderr))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("ttconv did not produce output file: %w", err)
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

var _ Converter = (*Client)(nil)
