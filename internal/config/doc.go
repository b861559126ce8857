// Package config loads, normalizes, and validates bulwark configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and records the environment variable that
// supplies the archive password at run time. The Config type centralizes
// every knob the CLI needs, allowing backup destinations, folder lists, and
// protection settings to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical policy types, and clear validation errors.
package config
