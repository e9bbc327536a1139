package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"specfetch/internal/logging"
	"specfetch/internal/services"
	"specfetch/internal/spectrum"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

const (
	lockFileName   = ".specfetch.lock"
	lockRetryDelay = 50 * time.Millisecond
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", services.Wrap(services.ErrValidation, "export", "format", fmt.Sprintf("unsupported format %q (want csv or json)", value), nil)
	}
}

// Document is the JSON representation of an exported record.
type Document struct {
	DatasetID string            `json:"dataset_id"`
	Layout    spectrum.Layout   `json:"layout"`
	Summary   spectrum.Summary  `json:"summary"`
	Header    []string          `json:"header"`
	Samples   []spectrum.Sample `json:"samples"`
}

// Writer writes tables into one output directory.
type Writer struct {
	dir    string
	logger *slog.Logger

	// mu serializes writers in this process; lock covers other processes.
	// A Flock handle treats a second lock call as already held.
	mu   sync.Mutex
	lock *flock.Flock
}

// NewWriter returns a writer for dir, creating the directory if needed.
func NewWriter(dir string, logger *slog.Logger) (*Writer, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "export", "init", "output directory required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		logger: logging.NewComponentLogger(logger, "export"),
	}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// FileName returns the file name used for a dataset in the given format.
// Identifiers are lowercased and anything outside [a-z0-9_-] becomes an
// underscore, so "SWP 12345" and "swp/12345" both map to "swp_12345".
func FileName(datasetID string, format Format) string {
	return sanitizeToken(datasetID) + "." + string(format)
}

func sanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

// Write stores table under the dataset's file name and returns the path.
// It blocks until the directory lock is acquired or ctx is done.
func (w *Writer) Write(ctx context.Context, datasetID string, table spectrum.SampleTable, format Format) (string, error) {
	if strings.TrimSpace(datasetID) == "" {
		return "", services.Wrap(services.ErrValidation, "export", "write", "dataset id required", nil)
	}
	if format == "" {
		format = FormatCSV
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	locked, err := w.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("acquire export lock: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("acquire export lock: %s is held by another process", w.lock.Path())
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release export lock", logging.Error(err))
		}
	}()

	target := filepath.Join(w.dir, FileName(datasetID, format))
	if err := writeAtomic(target, func(out io.Writer) error {
		switch format {
		case FormatCSV:
			return WriteCSV(out, table)
		case FormatJSON:
			return WriteJSON(out, datasetID, table)
		default:
			return fmt.Errorf("unsupported format %q", format)
		}
	}); err != nil {
		return "", err
	}

	w.logger.Debug("table exported",
		logging.Dataset(datasetID),
		logging.String("path", target),
		logging.String("format", string(format)),
		logging.Samples(table.Len()),
	)
	return target, nil
}

// WriteCSV encodes table as wavelength,flux,uncertainty rows under a header.
func WriteCSV(out io.Writer, table spectrum.SampleTable) error {
	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"wavelength", "flux", "uncertainty"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := 0; i < table.Len(); i++ {
		sample := table.At(i)
		row := []string{
			formatFloat(sample.Wavelength),
			formatFloat(sample.Flux),
			formatFloat(sample.Uncertainty),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteJSON encodes table as an indented Document.
func WriteJSON(out io.Writer, datasetID string, table spectrum.SampleTable) error {
	header := table.Header
	if header == nil {
		header = []string{}
	}
	doc := Document{
		DatasetID: datasetID,
		Layout:    table.Layout,
		Summary:   table.Summarize(),
		Header:    header,
		Samples:   table.Samples(),
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeAtomic(target string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
