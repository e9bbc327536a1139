// Package preflight provides readiness checks for the filesystem paths and
// remote services specfetch depends on.
//
// The CLI "specfetch status" command runs RunAll and renders each Result.
// Network checks are optional so the command stays useful offline.
package preflight
