package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"vodmux/internal/config"
	"vodmux/internal/deps"
	"vodmux/internal/language"
	"vodmux/internal/logging"
	"vodmux/internal/media/ffprobe"
	"vodmux/internal/services"
	"vodmux/internal/services/ffmpeg"
)

const (
	defaultSampleSeconds = 30.0
	defaultWindowTimeout = 60 * time.Second
)

var probeVideo = ffprobe.Inspect

// Report captures the outcome of verifying a muxed output file.
type Report struct {
	OK              bool
	DurationSeconds float64
	SubtitleStreams int
	Warnings        []string
}

// Engine validates muxed output files.
type Engine struct {
	ffprobeBinary string
	decoder       ffmpeg.Decoder
	sampleSeconds float64
	windowTimeout time.Duration
	logger        *slog.Logger
}

// New builds a verification engine from the runtime configuration. The
// decode timeout from the configuration covers both sample windows, so each
// window gets half of it.
func New(cfg *config.Config, decoder ffmpeg.Decoder, logger *slog.Logger) (*Engine, error) {
	if decoder == nil {
		return nil, errors.New("decoder required")
	}
	engine := &Engine{
		ffprobeBinary: "ffprobe",
		decoder:       decoder,
		sampleSeconds: defaultSampleSeconds,
		windowTimeout: defaultWindowTimeout,
		logger:        logger,
	}
	if cfg != nil {
		engine.ffprobeBinary = deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.Tools.FFprobe).Command
		if cfg.Verification.SampleSeconds > 0 {
			engine.sampleSeconds = float64(cfg.Verification.SampleSeconds)
		}
		if cfg.Verification.DecodeTimeoutSeconds > 0 {
			engine.windowTimeout = time.Duration(cfg.Verification.DecodeTimeoutSeconds) * time.Second / 2
		}
	}
	return engine, nil
}

type decodeWindow struct {
	label  string
	offset float64
}

// Verify inspects the candidate file and sample-decodes its head and tail.
// The returned report carries the warnings collected up to the point of a
// rejection, so callers can surface them alongside the error.
func (e *Engine) Verify(ctx context.Context, path string, expectSubtitles bool) (Report, error) {
	logger := logging.WithContext(ctx, e.logger)
	var report Report

	clean := strings.TrimSpace(path)
	if clean == "" {
		return report, services.Wrap(
			services.ErrVerification,
			"verify",
			"inspect output",
			"Verification received an empty file path",
			nil,
		)
	}
	info, err := os.Stat(clean)
	if err != nil {
		logger.Error("verification failed", logging.String("reason", "missing file"), logging.Error(err))
		return report, services.Wrap(
			services.ErrVerification,
			"verify",
			"inspect output",
			fmt.Sprintf("Output file %q is missing", clean),
			err,
		)
	}
	if info.IsDir() {
		logger.Error("verification failed", logging.String("reason", "path is directory"), logging.String("output_file", clean))
		return report, services.Wrap(
			services.ErrVerification,
			"verify",
			"inspect output",
			"Output path points to a directory",
			nil,
		)
	}
	if info.Size() == 0 {
		logger.Error("verification failed", logging.String("reason", "empty file"), logging.String("output_file", clean))
		return report, services.Wrap(
			services.ErrVerification,
			"verify",
			"inspect output",
			fmt.Sprintf("Output file %q is empty", clean),
			nil,
		)
	}

	probe, err := probeVideo(ctx, e.ffprobeBinary, clean)
	if err != nil {
		logger.Error("verification failed", logging.String("reason", "ffprobe"), logging.Error(err))
		return report, services.Wrap(
			services.ErrExternalTool,
			"verify",
			"ffprobe inspection",
			"Failed to inspect output with ffprobe",
			err,
		)
	}
	duration := probe.DurationSeconds()
	if math.IsNaN(duration) || duration <= 0 {
		logger.Error("verification failed", logging.String("reason", "invalid duration"))
		return report, services.Wrap(
			services.ErrVerification,
			"verify",
			"validate duration",
			"Output duration could not be determined",
			nil,
		)
	}
	report.DurationSeconds = duration
	report.SubtitleStreams = probe.SubtitleStreamCount()

	if expectSubtitles && report.SubtitleStreams == 0 {
		report.Warnings = append(report.Warnings, "expected subtitle stream is missing")
		logger.Warn("verification warning",
			logging.String("reason", "subtitle stream missing"),
			logging.String("output_file", clean),
		)
	}
	for _, stream := range probe.SubtitleStreams() {
		code := language.ExtractFromTags(stream.Tags)
		if code == "" {
			continue
		}
		logger.Debug("subtitle stream present",
			logging.Int("stream_index", stream.Index),
			logging.String("language", language.DisplayName(code)),
		)
	}

	windows := []decodeWindow{{label: "head", offset: 0}}
	if duration > e.sampleSeconds {
		windows = append(windows, decodeWindow{label: "tail", offset: duration - e.sampleSeconds})
	}
	for _, window := range windows {
		decodeCtx, cancel := context.WithTimeout(ctx, e.windowTimeout)
		stderr, decodeErr := e.decoder.NullDecode(decodeCtx, clean, window.offset, e.sampleSeconds)
		cancel()
		if decodeErr != nil {
			if errors.Is(decodeErr, context.DeadlineExceeded) {
				logger.Error("verification failed",
					logging.String("reason", "decode timeout"),
					logging.String("window", window.label),
				)
				return report, services.Wrap(
					services.ErrTimeout,
					"verify",
					window.label+" decode",
					fmt.Sprintf("Decode sample timed out after %s", e.windowTimeout),
					decodeErr,
				)
			}
			logger.Error("verification failed",
				logging.String("reason", "decode failure"),
				logging.String("window", window.label),
				logging.Error(decodeErr),
			)
			return report, services.Wrap(
				services.ErrVerification,
				"verify",
				window.label+" decode",
				"Decode sample reported corruption",
				decodeErr,
			)
		}
		if stderr != "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s decode: %s", window.label, stderr))
			logger.Warn("decode sample reported warnings",
				logging.String("window", window.label),
				logging.String("detail", stderr),
			)
		}
	}

	report.OK = true
	logger.Info("verification passed",
		logging.String("output_file", clean),
		logging.Float64("duration_seconds", duration),
		logging.Int("subtitle_streams", report.SubtitleStreams),
		logging.Int("warning_count", len(report.Warnings)),
	)
	return report, nil
}
