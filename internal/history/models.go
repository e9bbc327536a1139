package history

import "time"

// Outcome is the result of one fetch and decode attempt.
type Outcome string

const (
	OutcomeDecoded Outcome = "decoded"
	OutcomeFailed  Outcome = "failed"
)

// Entry is one row of the ledger.
type Entry struct {
	ID           int64         `json:"id"`
	DatasetID    string        `json:"dataset_id"`
	Tier         string        `json:"tier,omitempty"`
	URL          string        `json:"url,omitempty"`
	RequestID    string        `json:"request_id,omitempty"`
	Layout       string        `json:"layout,omitempty"`
	Samples      int           `json:"samples"`
	Outcome      Outcome       `json:"outcome"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Failed reports whether the attempt ended in an error.
func (e Entry) Failed() bool {
	return e.Outcome == OutcomeFailed
}

// ListOptions filters List results.
type ListOptions struct {
	DatasetID string
	Outcome   Outcome
	Limit     int
}
