package spectrum

import (
	"strconv"
	"strings"

	"specfetch/internal/services"
)

// MalformedRecordError reports a structural or numeric problem in a record.
// Line is the 0-based index of the offending line, or -1 when the problem
// concerns the record as a whole.
type MalformedRecordError struct {
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	var b strings.Builder
	b.WriteString("malformed record")
	if e.Line >= 0 {
		b.WriteString(": line ")
		b.WriteString(strconv.Itoa(e.Line))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Line >= 0 {
		b.WriteString(" (text ")
		b.WriteString(strconv.Quote(e.Text))
		b.WriteByte(')')
	}
	return b.String()
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Is lets callers match any decode failure with errors.Is(err, services.ErrMalformed).
func (e *MalformedRecordError) Is(target error) bool {
	return target == services.ErrMalformed
}
