package spectrum

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"specfetch/internal/services"
)

// maxAxisSamples bounds the reconstructed grid; real high dispersion orders
// hold a few thousand samples.
const maxAxisSamples = 1 << 20

// AxisFields holds the raw text of the three wavelength-grid parameters found
// on the last header line of a high dispersion record.
type AxisFields struct {
	Start string
	Delta string
	Count string
}

// FieldError reports a wavelength-grid parameter that could not be located or
// parsed.
type FieldError struct {
	Field string
	Text  string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s field %q", e.Field, e.Text)
	}
	return fmt.Sprintf("%s field %q: %v", e.Field, e.Text, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func (e *FieldError) Is(target error) bool {
	return target == services.ErrMalformed
}

var (
	errMissingDelimiter = errors.New("missing delimiter")
	errNotFinite        = errors.New("not a finite number")
)

// SplitAxisHeader extracts the start, delta, and count texts from a grid
// header line:
//   - start is the text after the first '+', cut at the next '+' and then at
//     the first ','
//   - delta is the text after the last '=' that precedes the first '*'
//   - count is the text after the last ','
func SplitAxisHeader(line string) (AxisFields, error) {
	var fields AxisFields

	parts := strings.Split(line, "+")
	if len(parts) < 2 {
		return fields, &FieldError{Field: "start", Text: line, Err: fmt.Errorf("%w '+'", errMissingDelimiter)}
	}
	start, _, _ := strings.Cut(parts[1], ",")
	fields.Start = start

	star := strings.IndexByte(line, '*')
	if star < 0 {
		return fields, &FieldError{Field: "delta", Text: line, Err: fmt.Errorf("%w '*'", errMissingDelimiter)}
	}
	prefix := line[:star]
	eq := strings.LastIndexByte(prefix, '=')
	if eq < 0 {
		return fields, &FieldError{Field: "delta", Text: prefix, Err: fmt.Errorf("%w '='", errMissingDelimiter)}
	}
	fields.Delta = prefix[eq+1:]

	comma := strings.LastIndexByte(line, ',')
	if comma < 0 {
		return fields, &FieldError{Field: "count", Text: line, Err: fmt.Errorf("%w ','", errMissingDelimiter)}
	}
	fields.Count = line[comma+1:]

	return fields, nil
}

// Axis reconstructs a linear wavelength grid. countText is the maximum 0-based
// sample index, so the grid holds count+1 values: start + i*delta.
func Axis(startText, deltaText, countText string) ([]float64, error) {
	start, err := strconv.ParseFloat(strings.TrimSpace(startText), 64)
	if err != nil {
		return nil, &FieldError{Field: "start", Text: startText, Err: err}
	}
	delta, err := strconv.ParseFloat(strings.TrimSpace(deltaText), 64)
	if err != nil {
		return nil, &FieldError{Field: "delta", Text: deltaText, Err: err}
	}
	if !finite(start) {
		return nil, &FieldError{Field: "start", Text: startText, Err: errNotFinite}
	}
	if !finite(delta) {
		return nil, &FieldError{Field: "delta", Text: deltaText, Err: errNotFinite}
	}
	kMax, err := strconv.Atoi(strings.TrimSpace(countText))
	if err != nil {
		return nil, &FieldError{Field: "count", Text: countText, Err: err}
	}
	n := kMax + 1
	if n < 0 || n > maxAxisSamples {
		return nil, &FieldError{Field: "count", Text: countText, Err: fmt.Errorf("sample count %d out of range [0, %d]", n, maxAxisSamples)}
	}

	values := make([]float64, n)
	for i := range values {
		values[i] = delta*float64(i) + start
	}
	return values, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
