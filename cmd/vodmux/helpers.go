package main

import "time"

// formatSeconds renders a media duration in seconds as a compact clock string,
// or an empty string when no duration was measured.
func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
