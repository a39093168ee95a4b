package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vodmux/internal/ledger"
)

func newHistoryCommand(cctx *commandContext) *cobra.Command {
	var limit int
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs from the history ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return showRunDetail(cmd, store, args[0], failedOnly)
			}
			return showRecentRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Show only failed jobs in run detail")
	return cmd
}

func showRecentRuns(cmd *cobra.Command, store *ledger.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			humanize.Time(run.StartedAt),
			strconv.Itoa(run.JobCount),
			strconv.Itoa(run.Completed),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Cancelled),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Jobs", "Completed", "Skipped", "Failed", "Cancelled"},
		rows,
		2, 3, 4, 5, 6,
	))
	return nil
}

func showRunDetail(cmd *cobra.Command, store *ledger.Store, runID string, failedOnly bool) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run found with id %s", runID)
	}
	jobs, err := store.JobsForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s started %s\n", run.ID, humanize.Time(run.StartedAt))

	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		if failedOnly && job.Outcome != ledger.OutcomeFailed {
			continue
		}
		detail := job.Detail
		if job.Outcome == ledger.OutcomeCompleted {
			detail = job.OutputFile
		}
		rows = append(rows, []string{
			job.Episode,
			job.Title,
			string(job.Outcome),
			formatSeconds(job.MediaDurationSeconds),
			detail,
		})
	}
	if len(rows) == 0 {
		if failedOnly {
			fmt.Fprintln(out, "No failed jobs in this run.")
		} else {
			fmt.Fprintln(out, "No jobs recorded for this run.")
		}
		return nil
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Episode", "Title", "Outcome", "Media", "Detail"},
		rows,
		3,
	))
	return nil
}
