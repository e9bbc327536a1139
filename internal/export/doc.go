// Package export writes decoded sample tables to CSV or JSON files.
//
// Files land in a single output directory guarded by an advisory lock so that
// concurrent specfetch processes never interleave writes. Each file is written
// to a temporary name and renamed into place.
package export
