package ledger

import (
	"strings"
	"time"
)

// Outcome classifies how a job finished.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

var allOutcomes = []Outcome{
	OutcomeCompleted,
	OutcomeSkipped,
	OutcomeFailed,
	OutcomeCancelled,
}

var outcomeSet = func() map[Outcome]struct{} {
	set := make(map[Outcome]struct{}, len(allOutcomes))
	for _, outcome := range allOutcomes {
		set[outcome] = struct{}{}
	}
	return set
}()

// AllOutcomes returns the ordered list of known outcomes.
func AllOutcomes() []Outcome {
	cp := make([]Outcome, len(allOutcomes))
	copy(cp, allOutcomes)
	return cp
}

// ParseOutcome converts a string into a known Outcome.
func ParseOutcome(value string) (Outcome, bool) {
	normalized := Outcome(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := outcomeSet[normalized]
	return normalized, ok
}

// Run captures one dispatcher invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	JobCount   int
	Completed  int
	Skipped    int
	Failed     int
	Cancelled  int
}

// JobRecord captures the terminal state of a single job within a run.
type JobRecord struct {
	ID                   int64
	RunID                string
	Episode              string
	Title                string
	Outcome              Outcome
	Detail               string
	OutputFile           string
	MediaDurationSeconds float64
	StartedAt            time.Time
	FinishedAt           *time.Time
}
