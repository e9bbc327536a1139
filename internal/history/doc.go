// Package history keeps a SQLite ledger of fetch and decode outcomes.
//
// Each pipeline run appends one entry per dataset: which record was requested,
// whether it decoded, how many samples survived compaction, and the error
// class when it did not. The ledger is an audit trail only. Payloads are never
// stored and nothing is served from it.
package history
