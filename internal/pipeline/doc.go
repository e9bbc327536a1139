// Package pipeline runs fetch and decode jobs.
//
// Runner.Run fetches one record, decodes it, optionally exports the table,
// and appends the outcome to the fetch history. RunBatch fans jobs out over a
// bounded errgroup. Jobs are independent: a failed job is reported in its
// Result and never cancels its siblings.
//
// Every job gets a correlation identifier that is stamped on the context and
// on each log line, and stored with the history entry.
package pipeline
