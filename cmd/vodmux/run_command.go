package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vodmux/internal/config"
	"vodmux/internal/console"
	"vodmux/internal/ledger"
	"vodmux/internal/logging"
	"vodmux/internal/manifest"
	"vodmux/internal/pipeline"
	"vodmux/internal/preflight"
	"vodmux/internal/services/ffmpeg"
	"vodmux/internal/services/ttconv"
	"vodmux/internal/services/ytdlp"
	"vodmux/internal/subtitles"
	"vodmux/internal/verify"
)

func newRunCommand(cctx *commandContext) *cobra.Command {
	var language string
	var scratchDir string
	var outputDir string
	var maxActive int
	var keepFiles bool

	cmd := &cobra.Command{
		Use:   "run <path>...",
		Short: "Download, mux, and verify episodes from descriptor files",
		Long: "Run processes episode descriptor JSON files. Each path may name a single\n" +
			"descriptor or a directory of them. Downloads run concurrently up to the\n" +
			"configured ceiling, and every muxed file is verified before it reaches\n" +
			"the output directory.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg, language, scratchDir, outputDir, maxActive, keepFiles); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			episodes, err := loadEpisodes(out, args)
			if err != nil {
				return err
			}

			if err := preflight.Verify(cfg, true); err != nil {
				return err
			}

			logger, logPath, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			// yt-dlp writes fragment temp files to TMPDIR; point it at the
			// scratch directory so cleanup catches strays.
			if err := os.Setenv("TMPDIR", cfg.Paths.ScratchDir); err != nil {
				logger.Warn("failed to redirect TMPDIR", logging.Error(err))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tracker := console.New(out)
			defer tracker.Close()

			var store *ledger.Store
			if opened, err := ledger.Open(cfg); err != nil {
				logger.Warn("run history disabled", logging.Error(err))
				fmt.Fprintf(out, "Warning: run history disabled: %v\n", err)
			} else {
				store = opened
				defer store.Close()
			}

			fetcher, err := ytdlp.New(cfg.YtdlpBinary())
			if err != nil {
				return err
			}
			ffmpegClient, err := ffmpeg.New(cfg.FFmpegBinary())
			if err != nil {
				return err
			}
			converter, err := ttconv.New(cfg.TTBinary())
			if err != nil {
				return err
			}
			subtitleSvc, err := subtitles.New(converter, time.Duration(cfg.Subtitles.RequestTimeout)*time.Second)
			if err != nil {
				return err
			}
			verifier, err := verify.New(cfg, ffmpegClient, logger)
			if err != nil {
				return err
			}

			dispatcher, err := pipeline.New(cfg, logger, tracker, pipeline.Deps{
				Fetcher:   fetcher,
				Subtitles: subtitleSvc,
				Muxer:     ffmpegClient,
				Verifier:  verifier,
				Ledger:    store,
			})
			if err != nil {
				return err
			}

			summary, err := dispatcher.Run(ctx, episodes)
			tracker.Close()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Completed", "Skipped", "Failed", "Cancelled", "Duration"},
				[][]string{{
					strconv.Itoa(summary.Total),
					strconv.Itoa(summary.Completed),
					strconv.Itoa(summary.Skipped),
					strconv.Itoa(summary.Failed),
					strconv.Itoa(summary.Cancelled),
					summary.Duration.Round(time.Second).String(),
				}},
				0, 1, 2, 3, 4,
			))

			if summary.Failed > 0 {
				if logPath != "" {
					fmt.Fprintf(out, "See %s for details.\n", logPath)
				}
				return fmt.Errorf("%d episode(s) failed", summary.Failed)
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Language code for the muxed subtitle track")
	cmd.Flags().StringVar(&scratchDir, "scratch-dir", "", "Override the scratch directory")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Override the output directory")
	cmd.Flags().IntVar(&maxActive, "max-active", 0, "Maximum simultaneous downloads")
	cmd.Flags().BoolVar(&keepFiles, "keep-files", false, "Keep intermediate files after muxing")

	return cmd
}

// applyRunFlags folds explicit flag overrides into the loaded configuration.
// Only flags the user actually set are applied, so config file values win for
// everything else.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, language, scratchDir, outputDir string, maxActive int, keepFiles bool) error {
	flags := cmd.Flags()
	if flags.Changed("language") {
		cfg.Subtitles.Language = strings.TrimSpace(language)
	}
	if flags.Changed("scratch-dir") {
		expanded, err := config.ExpandPath(scratchDir)
		if err != nil {
			return fmt.Errorf("resolve scratch dir: %w", err)
		}
		cfg.Paths.ScratchDir = expanded
	}
	if flags.Changed("output-dir") {
		expanded, err := config.ExpandPath(outputDir)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if flags.Changed("max-active") {
		if maxActive < 1 {
			return errors.New("max-active must be at least 1")
		}
		cfg.Downloads.MaxActive = maxActive
	}
	if flags.Changed("keep-files") {
		cfg.Downloads.KeepFiles = keepFiles
	}
	return cfg.EnsureDirectories()
}

// loadEpisodes resolves every argument to descriptor files and parses them.
// Invalid descriptors are reported and skipped so one bad file does not sink
// the batch.
func loadEpisodes(out io.Writer, args []string) ([]manifest.Episode, error) {
	var files []string
	for _, arg := range args {
		discovered, err := manifest.Discover(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, discovered...)
	}
	fmt.Fprintf(out, "Found %d JSON file(s) to process.\n", len(files))

	episodes := make([]manifest.Episode, 0, len(files))
	for _, file := range files {
		fmt.Fprintf(out, "Loading: %s\n", file)
		episode, err := manifest.LoadFile(file)
		if err != nil {
			fmt.Fprintf(out, "Error: Invalid episode data: %v\n", err)
			continue
		}
		episodes = append(episodes, episode)
	}
	if len(episodes) == 0 {
		return nil, errors.New("no valid episode descriptors found")
	}
	return episodes, nil
}
