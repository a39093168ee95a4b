package preflight

import (
	"fmt"
	"strings"

	"vodmux/internal/config"
	"vodmux/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config: directory
// access for the scratch, output, and log paths, then availability of the
// external tools.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	for _, status := range deps.Check(cfg) {
		results = append(results, toolResult(status))
	}
	return results
}

// Verify halts a run before any downloads start. It flattens every failed
// check into a single error so the operator can fix them in one pass.
// Subtitle conversion tooling is skipped when needSubtitles is false.
func Verify(cfg *config.Config, needSubtitles bool) error {
	if cfg == nil {
		return fmt.Errorf("preflight requires a configuration")
	}

	var failures []string
	for _, result := range RunAll(cfg) {
		if result.Passed {
			continue
		}
		if result.Name == "ttconv" && !needSubtitles {
			continue
		}
		failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("preflight checks failed: %s", strings.Join(failures, "; "))
}

func toolResult(status deps.Status) Result {
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Command}
	}
	detail := status.Detail
	if status.InstallHint != "" {
		detail = fmt.Sprintf("%s (install via %s)", detail, status.InstallHint)
	}
	return Result{Name: status.Name, Detail: detail}
}
