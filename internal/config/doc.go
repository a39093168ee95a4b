// Package config loads, normalizes, and validates vodmux configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VODMUX_NTFY_TOPIC. The Config type centralizes every knob the CLI needs,
// so scratch/output directories, tool overrides, and notification settings
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language codes, and clear validation errors.
package config
