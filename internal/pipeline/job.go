package pipeline

import (
	"path/filepath"
	"time"

	"vodmux/internal/ledger"
	"vodmux/internal/manifest"
	"vodmux/internal/verify"
)

// Job carries one episode's runtime state through the pipeline. Every field
// is owned by the runner goroutine that executes the job; the dispatcher
// reads results only after that goroutine has finished.
type Job struct {
	Episode manifest.Episode

	ScratchDir string
	OutputDir  string

	VideoPath string // fetched video container
	TTMLPath  string // raw subtitle document
	VTTPath   string // converted subtitle track
	MuxedPath string // muxed-but-unverified output
	FinalPath string // published destination

	KeepFiles bool

	state        State
	hasSubtitles bool
	retainMuxed  bool
	report       verify.Report
	outcome      ledger.Outcome
	detail       string
	startedAt    time.Time
	finishedAt   time.Time
}

// NewJob derives the per-job paths from the episode's output stem. Scratch
// files share the stem so no two distinct episodes contend for a path.
func NewJob(episode manifest.Episode, scratchDir, outputDir string, keepFiles bool) *Job {
	stem := episode.OutputStem()
	return &Job{
		Episode:    episode,
		ScratchDir: scratchDir,
		OutputDir:  outputDir,
		VideoPath:  filepath.Join(scratchDir, stem+".mp4"),
		TTMLPath:   filepath.Join(scratchDir, stem+".xml"),
		VTTPath:    filepath.Join(scratchDir, stem+".vtt"),
		MuxedPath:  filepath.Join(scratchDir, stem+"_muxed.mp4"),
		FinalPath:  filepath.Join(outputDir, stem+".mp4"),
		KeepFiles:  keepFiles,
		state:      StatePending,
	}
}

// Outcome reports the terminal outcome once the runner has finished.
func (j *Job) Outcome() ledger.Outcome { return j.outcome }

// Detail returns the operator-facing skip or failure explanation.
func (j *Job) Detail() string { return j.detail }

// State reports the job's current pipeline state.
func (j *Job) State() State { return j.state }

// Report returns the verification report for completed jobs.
func (j *Job) Report() verify.Report { return j.report }

// Duration reports wall time from runner start to terminal state.
func (j *Job) Duration() time.Duration {
	if j.startedAt.IsZero() || j.finishedAt.IsZero() {
		return 0
	}
	return j.finishedAt.Sub(j.startedAt)
}

// outputFile returns the artifact path worth recording for the outcome: the
// published file on success, the retained scratch artifact on a verification
// reject, nothing otherwise.
func (j *Job) outputFile() string {
	switch {
	case j.outcome == ledger.OutcomeCompleted:
		return j.FinalPath
	case j.retainMuxed:
		return j.MuxedPath
	default:
		return ""
	}
}

// record builds the ledger row for the finished job.
func (j *Job) record(runID string) *ledger.JobRecord {
	finished := j.finishedAt
	record := &ledger.JobRecord{
		RunID:                runID,
		Episode:              j.Episode.Label(),
		Title:                j.Episode.EpisodeName(),
		Outcome:              j.outcome,
		Detail:               j.detail,
		OutputFile:           j.outputFile(),
		MediaDurationSeconds: j.report.DurationSeconds,
		StartedAt:            j.startedAt,
	}
	if !finished.IsZero() {
		record.FinishedAt = &finished
	}
	return record
}
