package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"vodmux/internal/language"
	"vodmux/internal/manifest"
)

// commandRunner executes an external command and returns its stderr output.
type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

// MuxRequest describes one container mux invocation.
type MuxRequest struct {
	VideoPath    string                  // Fetched MP4 input
	SubtitlePath string                  // WebVTT input; empty means mux without subtitles
	Language     string                  // ISO 639-1 code for the subtitle stream tag
	Metadata     []manifest.MetadataPair // Container metadata in emission order
	OutputPath   string                  // Muxed MP4 destination
}

// Muxer defines the behaviour required by the mux step.
type Muxer interface {
	Mux(ctx context.Context, req MuxRequest) error
}

// Decoder defines the decode sampling behaviour required by verification.
type Decoder interface {
	NullDecode(ctx context.Context, path string, offsetSeconds, windowSeconds float64) (string, error)
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

// Client wraps ffmpeg CLI interactions for muxing and decode checks.
type Client struct {
	binary string
	run    commandRunner
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
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

// Mux combines the fetched video, the optional subtitle track, and the
// container metadata into the output path with stream copy. A failed mux
// removes any partial output file.
func (c *Client) Mux(ctx context.Context, req MuxRequest) error {
	if strings.TrimSpace(req.VideoPath) == "" {
		return errors.New("video path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("output path required")
	}
	if _, err := os.Stat(req.VideoPath); err != nil {
		return fmt.Errorf("video input not found: %w", err)
	}
	if req.SubtitlePath != "" {
		if _, err := os.Stat(req.SubtitlePath); err != nil {
			return fmt.Errorf("subtitle input not found: %w", err)
		}
	}

	stderr, err := c.run(ctx, c.binary, buildMuxArgs(req)...)
	if err != nil {
		_ = os.Remove(req.OutputPath)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg mux: %w: %s", err, strings.TrimSpace(stderr))
	}

	if _, err := os.Stat(req.OutputPath); err != nil {
		return fmt.Errorf("ffmpeg did not produce output file: %w", err)
	}
	return nil
}

// NullDecode decodes a window of the file into the null muxer, returning
// ffmpeg's stderr output. A non-zero exit reports as an error; stderr text
// on a clean exit signals decode warnings the caller may surface.
func (c *Client) NullDecode(ctx context.Context, path string, offsetSeconds, windowSeconds float64) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("decode path required")
	}
	if offsetSeconds < 0 {
		offsetSeconds = 0
	}
	args := []string{
		"-v", "error",
		"-ss", formatSeconds(offsetSeconds),
		"-t", formatSeconds(windowSeconds),
		"-i", path,
		"-f", "null", "-",
	}
	stderr, err := c.run(ctx, c.binary, args...)
	stderr = strings.TrimSpace(stderr)
	if err != nil {
		if ctx.Err() != nil {
			return stderr, ctx.Err()
		}
		return stderr, fmt.Errorf("ffmpeg decode: %w: %s", err, stderr)
	}
	return stderr, nil
}

// buildMuxArgs constructs the two fixed ffmpeg argument shapes: with a
// subtitle input the text track is transcoded to mov_text and tagged with
// the ISO 639-2 language; without one the container is a pure stream copy.
// Metadata flags are appended in request order.
func buildMuxArgs(req MuxRequest) []string {
	var args []string
	if req.SubtitlePath != "" {
		args = []string{
			"-i", req.VideoPath,
			"-i", req.SubtitlePath,
			"-c", "copy",
			"-c:s", "mov_text",
			"-metadata:s:s:0", "language=" + language.ToISO3(req.Language),
		}
	} else {
		args = []string{
			"-i", req.VideoPath,
			"-c", "copy",
		}
	}
	for _, pair := range req.Metadata {
		args = append(args, "-metadata", pair.Key+"="+pair.Value)
	}
	return append(args, req.OutputPath)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

// defaultCommandRunner executes ffmpeg with stderr captured for diagnostics.
func defaultCommandRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

var (
	_ Muxer   = (*Client)(nil)
	_ Decoder = (*Client)(nil)
)
