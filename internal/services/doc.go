// Package services defines shared utilities consumed by the archive, search,
// and pipeline packages.
//
// Key responsibilities:
//   - Context helpers that stamp dataset identifiers and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified (transport vs decompression vs malformed record) without
//     string matching.
//
// Use these helpers when wiring new remote clients so error handling and
// observability stay uniform across the tool.
package services
