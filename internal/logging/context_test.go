package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"vodmux/internal/logging"
	"vodmux/internal/services"
)

func TestWithContextStampsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := services.WithEpisode(context.Background(), "S01E02")
	ctx = services.WithStage(ctx, "muxing")
	ctx = services.WithRunID(ctx, "run-9")

	logging.WithContext(ctx, logger).Info("step done")

	line := buf.String()
	for _, fragment := range []string{"episode=S01E02", "stage=muxing", "run_id=run-9"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in log line %q", fragment, line)
		}
	}
}

func TestWithContextNilLoggerReturnsNop(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected logger")
	}
	// Must not panic when used.
	logger.Info("ignored")
}
