package spectrum

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Decode classifies a record and extracts its sample table. The final line of
// every record is a terminator and is never read as data.
func Decode(lines []string) (SampleTable, error) {
	layout, err := Classify(lines)
	if err != nil {
		return SampleTable{}, err
	}
	return DecodeAs(lines, layout)
}

// DecodeAs extracts the sample table using a layout resolved by the caller,
// typically via ClassifyStrict.
func DecodeAs(lines []string, layout Layout) (SampleTable, error) {
	var (
		table SampleTable
		err   error
	)
	switch layout {
	case LowDispersion:
		table, err = decodeLow(lines)
	case HighDispersion:
		table, err = decodeHigh(lines)
	default:
		return SampleTable{}, &MalformedRecordError{Line: -1, Reason: fmt.Sprintf("unsupported layout %s", layout)}
	}
	if err != nil {
		return SampleTable{}, err
	}
	compact(&table)
	return table, nil
}

// decodeLow reads wavelength, flux, and uncertainty from the first three
// columns. Background, net counts, and quality flag columns are ignored.
func decodeLow(lines []string) (SampleTable, error) {
	header, body, err := split(lines, LowDispersion)
	if err != nil {
		return SampleTable{}, err
	}

	table := SampleTable{
		Layout:      LowDispersion,
		Header:      header,
		Wavelength:  make([]float64, 0, len(body)),
		Flux:        make([]float64, 0, len(body)),
		Uncertainty: make([]float64, 0, len(body)),
	}
	first := LowDispersion.HeaderLines()
	for i, line := range body {
		values, err := parseColumns(first+i, line, 3)
		if err != nil {
			return SampleTable{}, err
		}
		table.Wavelength = append(table.Wavelength, values[0])
		table.Flux = append(table.Flux, values[1])
		table.Uncertainty = append(table.Uncertainty, values[2])
	}
	return table, nil
}

// decodeHigh reads flux and noise columns and rebuilds wavelengths from the
// grid described on the last header line.
func decodeHigh(lines []string) (SampleTable, error) {
	header, body, err := split(lines, HighDispersion)
	if err != nil {
		return SampleTable{}, err
	}

	gridLine := len(header) - 1
	fields, err := SplitAxisHeader(header[gridLine])
	if err != nil {
		return SampleTable{}, &MalformedRecordError{Line: gridLine, Text: header[gridLine], Reason: "wavelength grid", Err: err}
	}
	axis, err := Axis(fields.Start, fields.Delta, fields.Count)
	if err != nil {
		return SampleTable{}, &MalformedRecordError{Line: gridLine, Text: header[gridLine], Reason: "wavelength grid", Err: err}
	}
	if len(body) > len(axis) {
		return SampleTable{}, &MalformedRecordError{
			Line:   gridLine,
			Text:   header[gridLine],
			Reason: fmt.Sprintf("grid describes %d samples but body has %d lines", len(axis), len(body)),
		}
	}

	table := SampleTable{
		Layout:      HighDispersion,
		Header:      header,
		Wavelength:  axis[:len(body):len(body)],
		Flux:        make([]float64, 0, len(body)),
		Uncertainty: make([]float64, 0, len(body)),
	}
	first := HighDispersion.HeaderLines()
	for i, line := range body {
		values, err := parseColumns(first+i, line, 2)
		if err != nil {
			return SampleTable{}, err
		}
		table.Flux = append(table.Flux, values[0])
		table.Uncertainty = append(table.Uncertainty, values[1])
	}
	return table, nil
}

// split separates the header block from the sample body, dropping the
// trailing terminator line.
func split(lines []string, layout Layout) ([]string, []string, error) {
	n := layout.HeaderLines()
	if len(lines) < n+1 {
		return nil, nil, &MalformedRecordError{
			Line:   -1,
			Reason: fmt.Sprintf("%s record has %d lines, need at least %d header lines plus a terminator", layout, len(lines), n),
		}
	}
	return slices.Clone(lines[:n]), lines[n : len(lines)-1], nil
}

// parseColumns parses the first want whitespace-separated tokens of a line.
// Runs of whitespace are not significant and extra tokens are ignored.
func parseColumns(index int, line string, want int) ([]float64, error) {
	tokens := strings.Fields(line)
	if len(tokens) < want {
		return nil, &MalformedRecordError{
			Line:   index,
			Text:   line,
			Reason: fmt.Sprintf("expected at least %d columns, found %d", want, len(tokens)),
		}
	}
	values := make([]float64, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return nil, &MalformedRecordError{
				Line:   index,
				Text:   line,
				Reason: fmt.Sprintf("column %d is not numeric", i+1),
				Err:    err,
			}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &MalformedRecordError{
				Line:   index,
				Text:   line,
				Reason: fmt.Sprintf("column %d is not a finite number", i+1),
			}
		}
		values[i] = v
	}
	return values, nil
}
