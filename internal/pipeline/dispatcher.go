package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"vodmux/internal/config"
	"vodmux/internal/console"
	"vodmux/internal/ledger"
	"vodmux/internal/logging"
	"vodmux/internal/manifest"
	"vodmux/internal/notifications"
	"vodmux/internal/services"
	"vodmux/internal/services/ffmpeg"
	"vodmux/internal/services/ytdlp"
	"vodmux/internal/verify"
)

const lockFileName = "vodmux.lock"

// SubtitleProvider covers the subtitle fetch and convert steps.
// *subtitles.Service is the production implementation.
type SubtitleProvider interface {
	Download(ctx context.Context, rawURL, ttmlPath string) error
	Convert(ctx context.Context, ttmlPath, vttPath string) error
}

// Verifier validates muxed outputs. *verify.Engine is the production
// implementation.
type Verifier interface {
	Verify(ctx context.Context, path string, expectSubtitles bool) (verify.Report, error)
}

// Deps bundles the collaborators a Dispatcher drives. Fetcher, Subtitles,
// Muxer, and Verifier are required; Ledger and Notifier may be nil.
type Deps struct {
	Fetcher   ytdlp.Fetcher
	Subtitles SubtitleProvider
	Muxer     ffmpeg.Muxer
	Verifier  Verifier
	Ledger    *ledger.Store
	Notifier  notifications.Service
}

// Dispatcher launches one runner per episode and joins them under a bounded
// concurrency limit.
type Dispatcher struct {
	cfg      *config.Config
	logger   *slog.Logger
	tracker  *console.Tracker
	fetcher  ytdlp.Fetcher
	subs     SubtitleProvider
	muxer    ffmpeg.Muxer
	verifier Verifier
	store    *ledger.Store
	notifier notifications.Service

	limiter  *semaphore.Weighted
	stagger  time.Duration
	language string
}

// Summary aggregates a finished run for display and notification.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Total     int
	Completed int
	Skipped   int
	Failed    int
	Cancelled int
	Jobs      []*Job
}

// New constructs a dispatcher. A nil Notifier falls back to the
// config-driven notification service; a nil Ledger disables run history.
func New(cfg *config.Config, logger *slog.Logger, tracker *console.Tracker, deps Deps) (*Dispatcher, error) {
	if cfg == nil {
		return nil, errors.New("dispatcher requires a configuration")
	}
	if tracker == nil {
		return nil, errors.New("dispatcher requires a console tracker")
	}
	if deps.Fetcher == nil || deps.Subtitles == nil || deps.Muxer == nil || deps.Verifier == nil {
		return nil, errors.New("dispatcher requires fetcher, subtitle service, muxer, and verifier")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	maxActive := cfg.Downloads.MaxActive
	if maxActive <= 0 {
		maxActive = 1
	}

	return &Dispatcher{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		tracker:  tracker,
		fetcher:  deps.Fetcher,
		subs:     deps.Subtitles,
		muxer:    deps.Muxer,
		verifier: deps.Verifier,
		store:    deps.Ledger,
		notifier: notifier,
		limiter:  semaphore.NewWeighted(int64(maxActive)),
		stagger:  time.Duration(cfg.Downloads.LaunchStaggerSeconds) * time.Second,
		language: cfg.Subtitles.Language,
	}, nil
}

// Run processes the episodes and blocks until every launched job reaches a
// terminal state, even when ctx is cancelled mid-run. The returned error
// covers startup problems only; per-job failures are reported in the
// summary.
func (d *Dispatcher) Run(ctx context.Context, episodes []manifest.Episode) (*Summary, error) {
	if len(episodes) == 0 {
		return nil, errors.New("no episodes to process")
	}

	if err := os.MkdirAll(d.cfg.Paths.ScratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	lock := flock.New(filepath.Join(d.cfg.Paths.ScratchDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire scratch lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another vodmux run is already using the scratch directory")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			d.logger.Warn("failed to release scratch lock", logging.Error(err))
		}
	}()

	summary := &Summary{StartedAt: time.Now(), Total: len(episodes)}
	summary.RunID = d.beginRun(ctx, len(episodes))
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, d.logger)

	d.publish(ctx, notifications.EventRunStarted, notifications.Payload{
		"count": fmt.Sprintf("%d", len(episodes)),
	})
	logger.Info("run started",
		logging.Int("episodes", len(episodes)),
		logging.Int("max_active", d.cfg.Downloads.MaxActive),
		logging.String("scratch_dir", d.cfg.Paths.ScratchDir))

	var wg sync.WaitGroup
	jobs := make([]*Job, 0, len(episodes))
	seen := make(map[string]struct{}, len(episodes))

	for i, episode := range episodes {
		if ctx.Err() != nil {
			break
		}
		label := episode.Label()
		stem := episode.OutputStem()
		if _, dup := seen[stem]; dup {
			logger.Warn("skipping duplicate episode",
				logging.String(logging.FieldEpisode, label),
				logging.String("output_stem", stem))
			d.tracker.Message(fmt.Sprintf("[%s] duplicate descriptor, skipping", label))
			summary.Skipped++
			continue
		}
		seen[stem] = struct{}{}

		job := NewJob(episode, d.cfg.Paths.ScratchDir, d.cfg.Paths.OutputDir, d.cfg.Downloads.KeepFiles)
		d.tracker.Message(fmt.Sprintf("--- %s (%s) ---", episode.EpisodeName(), label))
		d.tracker.Register(label, rowText(label, StatePending.label()))
		jobs = append(jobs, job)

		wg.Add(1)
		go func(job *Job) {
			defer wg.Done()
			d.runJob(ctx, summary.RunID, job)
		}(job)

		if d.stagger > 0 && i < len(episodes)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(d.stagger):
			}
		}
	}

	d.tracker.Message(fmt.Sprintf("%d/%d episode(s) queued. Waiting for downloads to finish…", len(jobs), len(episodes)))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		d.tracker.Message("Interrupted, waiting for running downloads to stop…")
		logger.Info("cancellation requested, waiting for running jobs")
		<-done
	}

	summary.Cancelled = summary.Total - summary.Skipped - len(jobs)
	for _, job := range jobs {
		switch job.Outcome() {
		case ledger.OutcomeCompleted:
			summary.Completed++
		case ledger.OutcomeSkipped:
			summary.Skipped++
		case ledger.OutcomeFailed:
			summary.Failed++
		default:
			summary.Cancelled++
		}
	}
	summary.Jobs = jobs
	summary.Duration = time.Since(summary.StartedAt)

	d.tracker.Message("All downloads completed.")
	d.cleanupScratch(summary, logger)
	d.finishRun(ctx, summary)

	logger.Info("run finished",
		logging.Int("completed", summary.Completed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Int("cancelled", summary.Cancelled),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

// beginRun opens the ledger row for the run. Without a ledger the run still
// gets an ID so log lines correlate.
func (d *Dispatcher) beginRun(ctx context.Context, jobCount int) string {
	if d.store == nil {
		return uuid.NewString()
	}
	run, err := d.store.BeginRun(ctx, jobCount)
	if err != nil {
		d.logger.Warn("failed to record run start", logging.Error(err))
		return uuid.NewString()
	}
	return run.ID
}

func (d *Dispatcher) finishRun(ctx context.Context, summary *Summary) {
	ctx = context.WithoutCancel(ctx)
	if d.store != nil {
		if err := d.store.FinishRun(ctx, summary.RunID); err != nil {
			d.logger.Warn("failed to record run finish", logging.Error(err))
		}
	}
	d.publish(ctx, notifications.EventRunCompleted, notifications.RunSummaryPayload(
		summary.Completed, summary.Skipped, summary.Failed, summary.Cancelled, summary.Duration))
}

// cleanupScratch removes the shared scratch directory after the run. It is
// left in place when retention is requested or when a failed job retained an
// artifact there for inspection.
func (d *Dispatcher) cleanupScratch(summary *Summary, logger *slog.Logger) {
	if d.cfg.Downloads.KeepFiles {
		logger.Info("scratch directory retained", logging.String("scratch_dir", d.cfg.Paths.ScratchDir))
		return
	}
	for _, job := range summary.Jobs {
		if job.retainMuxed {
			logger.Info("scratch directory retained for inspection",
				logging.String("scratch_dir", d.cfg.Paths.ScratchDir),
				logging.String("artifact", job.MuxedPath))
			return
		}
	}
	if err := os.RemoveAll(d.cfg.Paths.ScratchDir); err != nil {
		d.tracker.Message(fmt.Sprintf("Warning: Could not remove temp directory: %v", err))
		logger.Warn("failed to remove scratch directory", logging.Error(err))
		return
	}
	d.tracker.Message(fmt.Sprintf("Cleaned up temporary directory: %s", d.cfg.Paths.ScratchDir))
}

// publish sends a notification without letting delivery problems affect the
// run.
func (d *Dispatcher) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		d.logger.Debug("notification delivery failed",
			logging.String("event", string(event)),
			logging.Error(err))
	}
}

func rowText(label, status string) string {
	return fmt.Sprintf("[%s] %s", label, status)
}
