package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// ProgressUpdate captures yt-dlp download progress output.
type ProgressUpdate struct {
	Percent float64
	Speed   string
	ETA     string
}

// Fetcher defines the behaviour required by the fetch step.
type Fetcher interface {
	Fetch(ctx context.Context, manifestURL, outputPath string, progress func(ProgressUpdate), message func(string)) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Fetch downloads the manifest into outputPath, retrying fragments forever.
// Progress lines feed the progress callback; every other informative line
// feeds the message callback. A missing or empty output file after a clean
// exit is reported as an error.
func (c *Client) Fetch(ctx context.Context, manifestURL, outputPath string, progress func(ProgressUpdate), message func(string)) error {
	manifestURL = strings.TrimSpace(manifestURL)
	if manifestURL == "" {
		return errors.New("manifest URL required")
	}
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return errors.New("output path required")
	}

	args := []string{
		manifestURL,
		"--force-generic-extractor",
		"--merge-output-format", "mp4",
		"-o", outputPath,
		"--fragment-retries", "infinite",
		"--newline",
	}

	if err := c.exec.Run(ctx, c.binary, args, func(line string) {
		if update, ok := parseProgress(line); ok {
			if progress != nil {
				progress(update)
			}
			return
		}
		if isNoise(line) {
			return
		}
		if message != nil {
			message(strings.TrimSpace(line))
		}
	}); err != nil {
		return fmt.Errorf("yt-dlp fetch: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("yt-dlp produced no output file: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("yt-dlp produced an empty output file")
	}
	return nil
}

// parseProgress extracts percent, speed, and ETA from yt-dlp download lines
// such as "[download]  42.3% of ~119.42MiB at 2.31MiB/s ETA 00:45".
func parseProgress(line string) (ProgressUpdate, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[download]") {
		return ProgressUpdate{}, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "[download]"))
	fields := strings.Fields(rest)
	if len(fields) == 0 || !strings.HasSuffix(fields[0], "%") {
		return ProgressUpdate{}, false
	}
	percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	if err != nil {
		return ProgressUpdate{}, false
	}
	update := ProgressUpdate{Percent: percent}
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "at":
			update.Speed = fields[i+1]
		case "ETA":
			update.ETA = fields[i+1]
		}
	}
	return update, true
}

// isNoise reports lines that carry no information worth scrolling: debug
// chatter, fragment retry spam (unbounded with infinite retries), and
// bookkeeping lines the progress row already covers.
func isNoise(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, "[debug]") {
		return true
	}
	if strings.Contains(trimmed, "Retrying fragment") {
		return true
	}
	for _, prefix := range []string{
		"[download] Destination:",
		"[download] Resuming download",
		"Deleting original file",
	} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
