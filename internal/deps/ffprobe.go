package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFprobe reports the ffprobe binary the verifier will execute.
//
// FFmpeg builds ship ffprobe alongside ffmpeg in the same directory, so when
// no explicit ffprobe override is configured the lookup prefers an ffprobe
// that sits next to the resolved ffmpeg binary before falling back to PATH.
// This keeps verification pointed at the same FFmpeg installation the mux
// step uses.
func ResolveFFprobe(ffmpegCommand, ffprobeOverride string) Status {
	result := Status{
		Name:        "ffprobe",
		Description: "Inspects muxed output during verification",
		InstallHint: "your system package manager",
	}

	if override := strings.TrimSpace(ffprobeOverride); override != "" {
		result.Command = override
		if _, err := exec.LookPath(override); err != nil {
			result.Detail = fmt.Sprintf("binary %q not found", override)
			return result
		}
		result.Available = true
		return result
	}

	ffmpegBinary := strings.TrimSpace(ffmpegCommand)
	if ffmpegBinary != "" {
		if resolved, err := exec.LookPath(ffmpegBinary); err == nil {
			if candidate, ok := siblingCandidate(resolved, "ffprobe"); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					result.Command = candidate
					result.Available = true
					return result
				}
			}
		}
	}

	probeName := "ffprobe"
	if probePath, err := exec.LookPath(probeName); err == nil {
		result.Command = probePath
		result.Available = true
		return result
	}

	result.Command = probeName
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", probeName)
	return result
}

func siblingCandidate(resolvedPath, name string) (string, bool) {
	if resolvedPath == "" {
		return "", false
	}
	dir := filepath.Dir(resolvedPath)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
