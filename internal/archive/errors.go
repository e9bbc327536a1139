package archive

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"specfetch/internal/services"
)

// TransportError reports a failed retrieval: an unreachable host, a non-2xx
// response, a timeout, or a cancelled context. Status is zero when no HTTP
// response was received.
type TransportError struct {
	DatasetID string
	URL       string
	Status    int
	Latency   time.Duration
	Err       error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fetch %s from %s", e.DatasetID, e.URL)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d %s", e.Status, http.StatusText(e.Status))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Latency > 0 {
		fmt.Fprintf(&b, " (latency=%v)", e.Latency)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == services.ErrTransport
}

// DecompressionError reports a payload that is not a valid gzip stream.
type DecompressionError struct {
	DatasetID string
	URL       string
	Err       error
}

func (e *DecompressionError) Error() string {
	if e.DatasetID == "" {
		return fmt.Sprintf("decompress %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("decompress %s from %s: %v", e.DatasetID, e.URL, e.Err)
}

func (e *DecompressionError) Unwrap() error { return e.Err }

func (e *DecompressionError) Is(target error) bool {
	return target == services.ErrDecompression
}
