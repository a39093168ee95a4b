// Package ledger persists run history in SQLite. Every dispatcher run
// records one row plus one row per job, which powers the history command
// and run summaries.
package ledger
