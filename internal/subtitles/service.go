package subtitles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"vodmux/internal/services/ttconv"
)

const defaultRequestTimeout = 30 * time.Second

// Service downloads TTML subtitle documents and converts them to WebVTT.
type Service struct {
	converter ttconv.Converter
	http      *http.Client
}

// Option customizes a Service.
type Option func(*Service)

// WithHTTPClient overrides the HTTP client used for subtitle downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.http = client
		}
	}
}

// New constructs a subtitle service around the supplied converter. The
// timeout bounds each subtitle download request.
func New(converter ttconv.Converter, timeout time.Duration, opts ...Option) (*Service, error) {
	if converter == nil {
		return nil, errors.New("subtitle converter required")
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	svc := &Service{
		converter: converter,
		http:      &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Download fetches the TTML document at rawURL and writes it to ttmlPath.
func (s *Service) Download(ctx context.Context, rawURL, ttmlPath string) error {
	if s == nil {
		return errors.New("subtitle service is nil")
	}
	if strings.TrimSpace(rawURL) == "" {
		return errors.New("subtitle url required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build subtitle request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch subtitle document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("subtitle download failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read subtitle document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("subtitle download returned an empty document")
	}

	if err := os.WriteFile(ttmlPath, data, 0o644); err != nil {
		return fmt.Errorf("write subtitle document: %w", err)
	}
	return nil
}

// Convert turns the downloaded TTML document at ttmlPath into a WebVTT file
// at vttPath.
func (s *Service) Convert(ctx context.Context, ttmlPath, vttPath string) error {
	if s == nil {
		return errors.New("subtitle service is nil")
	}
	return s.converter.Convert(ctx, ttmlPath, vttPath)
}
