package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vodmux/internal/fileutil"
	"vodmux/internal/ledger"
	"vodmux/internal/logging"
	"vodmux/internal/notifications"
	"vodmux/internal/services"
	"vodmux/internal/services/ffmpeg"
	"vodmux/internal/services/ytdlp"
)

// runJob drives one episode to a terminal outcome and records it.
func (d *Dispatcher) runJob(ctx context.Context, runID string, job *Job) {
	label := job.Episode.Label()
	ctx = services.WithEpisode(ctx, label)
	logger := logging.WithContext(ctx, d.logger)

	job.startedAt = time.Now()
	err := d.execute(ctx, job, logger)
	job.finishedAt = time.Now()

	switch {
	case err == nil && job.outcome == ledger.OutcomeSkipped:
	case err == nil:
		job.outcome = ledger.OutcomeCompleted
		d.setState(job, StateDone)
		d.tracker.Message(fmt.Sprintf("[%s] Done.", label))
	case errors.Is(err, context.Canceled):
		job.outcome = ledger.OutcomeCancelled
		job.detail = "cancelled"
		d.tracker.Update(label, rowText(label, "cancelled"))
		logger.Info("job cancelled", logging.String("last_state", string(job.state)))
	default:
		job.outcome = ledger.OutcomeFailed
		job.detail = err.Error()
		d.tracker.Update(label, rowText(label, "failed"))
		d.tracker.Message(fmt.Sprintf("[%s] %v", label, err))
		logger.Error("job failed", logging.String("last_state", string(job.state)), logging.Error(err))
		d.publish(ctx, notifications.EventJobFailed, notifications.Payload{
			"episode": label,
			"error":   err.Error(),
		})
	}

	d.recordJob(ctx, runID, job, logger)
}

// execute walks the job through its states. A nil return means the job
// completed or was skipped; the caller classifies errors into outcomes.
func (d *Dispatcher) execute(ctx context.Context, job *Job, logger *slog.Logger) error {
	label := job.Episode.Label()

	if _, err := os.Stat(job.FinalPath); err == nil {
		job.outcome = ledger.OutcomeSkipped
		job.detail = "output already exists"
		d.tracker.Update(label, rowText(label, "already saved, skipping"))
		logger.Info("output already exists, skipping", logging.String("output_file", job.FinalPath))
		return nil
	}

	defer d.cleanup(job, logger)

	if err := d.withPermit(ctx, job, func() error {
		return d.fetch(ctx, job, logger)
	}); err != nil {
		return err
	}

	if err := d.prepareSubtitles(ctx, job, logger); err != nil {
		return err
	}

	if err := d.withPermit(ctx, job, func() error {
		return d.mux(ctx, job, logger)
	}); err != nil {
		return err
	}

	if err := d.verifyOutput(ctx, job, logger); err != nil {
		return err
	}
	return d.publishOutput(job, logger)
}

// withPermit runs fn while holding one concurrency slot. The row shows the
// waiting state for as long as the job queues.
func (d *Dispatcher) withPermit(ctx context.Context, job *Job, fn func() error) error {
	d.setState(job, StatePending)
	if err := d.limiter.Acquire(ctx, 1); err != nil {
		return err
	}
	defer d.limiter.Release(1)
	return fn()
}

func (d *Dispatcher) fetch(ctx context.Context, job *Job, logger *slog.Logger) error {
	label := job.Episode.Label()
	d.setState(job, StateFetching)
	d.tracker.Message(fmt.Sprintf("[%s] Starting download…", label))
	logger.Info("fetch started", logging.String("manifest_url", job.Episode.ManifestURL))

	sampler := logging.NewProgressSampler(0)
	progress := func(update ytdlp.ProgressUpdate) {
		text := fmt.Sprintf("downloading %5.1f%%", update.Percent)
		if update.Speed != "" {
			text += " at " + update.Speed
		}
		if update.ETA != "" {
			text += " ETA " + update.ETA
		}
		d.tracker.Update(label, rowText(label, text))
		if sampler.ShouldLog(update.Percent, "fetch") {
			logger.Info("fetch progress",
				logging.Float64("percent", update.Percent),
				logging.String("speed", update.Speed),
				logging.String("eta", update.ETA))
		}
	}
	message := func(line string) {
		d.tracker.Message(fmt.Sprintf("[%s] %s", label, line))
	}
	if err := d.fetcher.Fetch(ctx, job.Episode.ManifestURL, job.VideoPath, progress, message); err != nil {
		return err
	}
	logger.Info("fetch finished", logging.String("video_path", job.VideoPath))
	return nil
}

// prepareSubtitles fetches and converts the subtitle track. Subtitle
// problems degrade the job to a subtitle-free mux; only cancellation
// propagates as an error.
func (d *Dispatcher) prepareSubtitles(ctx context.Context, job *Job, logger *slog.Logger) error {
	d.setState(job, StateFetchingSubs)
	if err := d.subs.Download(ctx, job.Episode.SubtitlesURL, job.TTMLPath); err != nil {
		return d.degradeSubtitles(ctx, job, logger, err)
	}
	d.setState(job, StateConvertingSubs)
	if err := d.subs.Convert(ctx, job.TTMLPath, job.VTTPath); err != nil {
		return d.degradeSubtitles(ctx, job, logger, err)
	}
	job.hasSubtitles = true
	logger.Info("subtitles ready", logging.String("subtitle_path", job.VTTPath))
	return nil
}

func (d *Dispatcher) degradeSubtitles(ctx context.Context, job *Job, logger *slog.Logger, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	d.tracker.Message(fmt.Sprintf("[%s] Subtitle error: %v", job.Episode.Label(), err))
	logger.Warn("subtitle step failed, continuing without subtitles", logging.Error(err))
	return nil
}

// mux runs ffmpeg under a context that survives run cancellation. A started
// mux always writes to completion; cancellation takes effect at the next
// state boundary.
func (d *Dispatcher) mux(ctx context.Context, job *Job, logger *slog.Logger) error {
	d.setState(job, StateMuxing)
	req := ffmpeg.MuxRequest{
		VideoPath:  job.VideoPath,
		Language:   d.language,
		Metadata:   job.Episode.Metadata(),
		OutputPath: job.MuxedPath,
	}
	if job.hasSubtitles {
		req.SubtitlePath = job.VTTPath
	}
	if err := d.muxer.Mux(context.WithoutCancel(ctx), req); err != nil {
		return err
	}
	logger.Info("mux finished", logging.String("output_file", job.MuxedPath))
	return nil
}

// verifyOutput validates the muxed file. A rejected artifact stays in the
// scratch directory for inspection instead of being deleted with the other
// intermediates.
func (d *Dispatcher) verifyOutput(ctx context.Context, job *Job, logger *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.setState(job, StateVerifying)
	report, err := d.verifier.Verify(ctx, job.MuxedPath, job.hasSubtitles)
	job.report = report
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		d.setState(job, StateDiscarding)
		job.retainMuxed = true
		d.tracker.Message(fmt.Sprintf("[%s] Verification failed, artifact kept at %s", job.Episode.Label(), job.MuxedPath))
		return err
	}
	for _, warning := range report.Warnings {
		logger.Warn("verification warning", logging.String("detail", warning))
	}
	return nil
}

// publishOutput moves the verified file to its final location. Once a file
// verifies, publication is not interruptible.
func (d *Dispatcher) publishOutput(job *Job, logger *slog.Logger) error {
	label := job.Episode.Label()
	d.setState(job, StatePublishing)
	if err := os.MkdirAll(filepath.Dir(job.FinalPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := fileutil.MoveFile(job.MuxedPath, job.FinalPath); err != nil {
		return fmt.Errorf("publish output: %w", err)
	}
	suffix := "no subtitles"
	if job.hasSubtitles {
		suffix = "with subtitles"
	}
	d.tracker.Message(fmt.Sprintf("[%s] Saved (%s): %s", label, suffix, job.FinalPath))
	logger.Info("output published",
		logging.String("output_file", job.FinalPath),
		logging.Float64("duration_seconds", job.report.DurationSeconds),
		logging.Int("subtitle_streams", job.report.SubtitleStreams))
	return nil
}

// cleanup removes intermediate artifacts. The muxed file survives when a
// verification failure marked it for inspection, and everything survives
// when retention is requested.
func (d *Dispatcher) cleanup(job *Job, logger *slog.Logger) {
	d.setState(job, StateCleaningUp)
	if job.KeepFiles {
		logger.Info("retaining intermediate files", logging.String("scratch_dir", job.ScratchDir))
		return
	}
	paths := []string{job.VideoPath, job.TTMLPath, job.VTTPath}
	if !job.retainMuxed {
		paths = append(paths, job.MuxedPath)
	}
	for _, path := range paths {
		if err := fileutil.RemoveIfExists(path); err != nil {
			logger.Warn("failed to remove intermediate file",
				logging.String("path", path),
				logging.Error(err))
		}
	}
}

func (d *Dispatcher) setState(job *Job, state State) {
	job.state = state
	label := job.Episode.Label()
	d.tracker.Update(label, rowText(label, state.label()))
}

func (d *Dispatcher) recordJob(ctx context.Context, runID string, job *Job, logger *slog.Logger) {
	if d.store == nil {
		return
	}
	if err := d.store.RecordJob(context.WithoutCancel(ctx), job.record(runID)); err != nil {
		logger.Warn("failed to record job outcome", logging.Error(err))
	}
}
