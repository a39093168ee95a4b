// Package preflight provides readiness checks for the filesystem paths and
// external tools that vodmux depends on.
//
// These checks run in two contexts:
//   - The run command calls Verify before dispatching any downloads. If a
//     required check fails, the whole run halts instead of failing one
//     episode at a time.
//   - The CLI "vodmux deps" command uses RunAll to display tool and
//     directory health.
//
// Subtitle tooling is only required when the queued episodes carry
// subtitles -- runs without them proceed even if ttconv is missing.
package preflight
