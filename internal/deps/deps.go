package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"vodmux/internal/config"
)

// Requirement defines an external tool vodmux relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	InstallHint string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	InstallHint string
	Available   bool
	Detail      string
}

// Check evaluates every tool vodmux shells out to, honouring [tools]
// overrides from the configuration. Statuses come back in display order.
func Check(cfg *config.Config) []Status {
	statuses := CheckBinaries([]Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.YtdlpBinary(),
			Description: "Downloads video streams from manifests",
			InstallHint: "pip install yt-dlp",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Muxes video, subtitles, and metadata",
			InstallHint: "your system package manager",
		},
	})
	statuses = append(statuses, ResolveFFprobe(cfg.FFmpegBinary(), cfg.Tools.FFprobe))
	statuses = append(statuses, CheckBinaries([]Requirement{
		{
			Name:        "ttconv",
			Command:     cfg.TTBinary(),
			Description: "Converts TTML subtitles to WebVTT",
			InstallHint: "pip install --pre ttconv",
		},
	})...)
	return statuses
}

// Missing filters statuses down to the unavailable tools.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available {
			missing = append(missing, status)
		}
	}
	return missing
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			InstallHint: req.InstallHint,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
