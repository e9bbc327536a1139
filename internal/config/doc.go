// Package config loads, normalizes, and validates specfetch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// SPECFETCH_ARCHIVE_URL. The Config type centralizes the archive, MAST, and
// SIMBAD endpoints together with local paths, so the CLI resolves every knob in
// one pass.
package config
