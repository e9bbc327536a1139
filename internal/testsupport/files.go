package testsupport

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// RecordTerminator closes every fixture record.
const RecordTerminator = " END OF PREVIEW"

// HeaderLines returns n placeholder metadata lines.
func HeaderLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf(" IUE PREVIEW HEADER LINE %02d", i+1)
	}
	return lines
}

// LowDispersionRecord builds a low dispersion record from body lines of
// "wavelength flux uncertainty ..." text.
func LowDispersionRecord(body ...string) []string {
	lines := HeaderLines(18)
	lines = append(lines, body...)
	return append(lines, RecordTerminator)
}

// HighDispersionRecord builds a high dispersion record whose grid starts at
// start, steps by delta, and allows maxIndex+1 samples.
func HighDispersionRecord(start, delta float64, maxIndex int, body ...string) []string {
	lines := HeaderLines(18)
	lines = append(lines, fmt.Sprintf(" w(k) =+%g, dw =%g* k, k = 0,%d", start, delta, maxIndex))
	lines = append(lines, body...)
	return append(lines, RecordTerminator)
}

// GzipLines joins lines with newlines and compresses the result.
func GzipLines(t testing.TB, lines []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(strings.Join(lines, "\n"))); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
