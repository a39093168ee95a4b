package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"vodmux/internal/config"
	"vodmux/internal/logging"
	"vodmux/internal/services/ffmpeg"
	"vodmux/internal/verify"
)

func newVerifyCommand(cctx *commandContext) *cobra.Command {
	var expectSubs bool

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Probe and sample-decode a muxed output file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			logger, _, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			decoder, err := ffmpeg.New(cfg.FFmpegBinary())
			if err != nil {
				return err
			}
			engine, err := verify.New(cfg, decoder, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := engine.Verify(ctx, path, expectSubs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Result"},
				[][]string{
					{"File", path},
					{"Duration", formatSeconds(report.DurationSeconds)},
					{"Subtitle streams", strconv.Itoa(report.SubtitleStreams)},
					{"Playable", yesNo(report.OK)},
				},
			))
			for _, warning := range report.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&expectSubs, "subs", false, "Require an embedded subtitle stream")
	return cmd
}
