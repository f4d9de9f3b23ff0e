// Package config loads, normalizes, and validates roadmap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ROADMAP_API_TOKEN and ROADMAP_REMOTE_TOKEN. The same Config drives both the
// roadmap CLI (catalog/manifest locations and the remote store client) and the
// roadmapd daemon (bind address, storage backend, attachment directory).
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
