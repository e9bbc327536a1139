package spectrum

import (
	"fmt"
	"strings"
)

// Layout identifies the physical encoding of a record.
type Layout int

const (
	LowDispersion Layout = iota
	HighDispersion
)

const (
	// markerLine is the 0-based line whose first character selects the layout.
	markerLine = 18
	// highDispersionMarker opens the wavelength-grid header line of high dispersion files.
	highDispersionMarker = 'w'
)

// HeaderLines returns the number of leading metadata lines for the layout.
func (l Layout) HeaderLines() int {
	if l == HighDispersion {
		return 19
	}
	return 18
}

func (l Layout) String() string {
	switch l {
	case LowDispersion:
		return "low_dispersion"
	case HighDispersion:
		return "high_dispersion"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// MarshalText renders the layout name for JSON and CSV output.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a layout name produced by MarshalText.
func (l *Layout) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low_dispersion":
		*l = LowDispersion
	case "high_dispersion":
		*l = HighDispersion
	default:
		return fmt.Errorf("unknown layout %q", text)
	}
	return nil
}

// Classify resolves the record layout from the marker line. Any marker other
// than 'w' is treated as low dispersion, matching the archive's legacy rule.
func Classify(lines []string) (Layout, error) {
	marker, err := markerByte(lines)
	if err != nil {
		return LowDispersion, err
	}
	if marker == highDispersionMarker {
		return HighDispersion, nil
	}
	return LowDispersion, nil
}

// ClassifyStrict is Classify with an explicit check that a low dispersion
// marker line starts a numeric sample. Unknown markers are rejected instead of
// silently falling back to low dispersion.
func ClassifyStrict(lines []string) (Layout, error) {
	marker, err := markerByte(lines)
	if err != nil {
		return LowDispersion, err
	}
	switch {
	case marker == highDispersionMarker:
		return HighDispersion, nil
	case isNumericStart(marker):
		return LowDispersion, nil
	default:
		return LowDispersion, &MalformedRecordError{
			Line:   markerLine,
			Text:   lines[markerLine],
			Reason: fmt.Sprintf("unrecognized layout marker %q", marker),
		}
	}
}

// markerByte returns the first character of the marker line after leading
// whitespace. A blank marker line yields 0.
func markerByte(lines []string) (byte, error) {
	if len(lines) <= markerLine {
		return 0, &MalformedRecordError{
			Line:   -1,
			Reason: fmt.Sprintf("record has %d lines, need at least %d to read the layout marker", len(lines), markerLine+1),
		}
	}
	trimmed := strings.TrimLeft(lines[markerLine], " \t")
	if trimmed == "" {
		return 0, nil
	}
	return trimmed[0], nil
}

func isNumericStart(b byte) bool {
	return (b >= '0' && b <= '9') || b == '-' || b == '+' || b == '.'
}
