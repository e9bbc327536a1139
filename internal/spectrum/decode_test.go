package spectrum_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"specfetch/internal/services"
	"specfetch/internal/spectrum"
)

const terminator = "  END"

func headerLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf(" IUE PREVIEW HEADER %02d", i)
	}
	return lines
}

func lowRecord(body ...string) []string {
	lines := headerLines(18)
	lines = append(lines, body...)
	return append(lines, terminator)
}

func highRecord(grid string, body ...string) []string {
	lines := headerLines(18)
	lines = append(lines, grid)
	lines = append(lines, body...)
	return append(lines, terminator)
}

const scenarioGrid = "w(k) =+4000.0, dw =2.5* k, k = 0,99"

func TestDecodeLowDispersionScenario(t *testing.T) {
	table, err := spectrum.Decode(lowRecord("4500.0  1.2e-13  3.0e-15"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if table.Layout != spectrum.LowDispersion {
		t.Fatalf("layout = %s, want low dispersion", table.Layout)
	}
	want := spectrum.SampleTable{
		Layout:      spectrum.LowDispersion,
		Header:      headerLines(18),
		Wavelength:  []float64{4500.0},
		Flux:        []float64{1.2e-13},
		Uncertainty: []float64{3.0e-15},
	}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLowDispersionIgnoresExtraColumnsAndSpacing(t *testing.T) {
	table, err := spectrum.Decode(lowRecord(
		"  1150.0    2.0e-14   1.0e-15   12.5   40.0   0",
		"1151.7\t2.5e-14 1.1e-15 13.0 41.0 -1600",
	))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if diff := cmp.Diff([]float64{1150.0, 1151.7}, table.Wavelength); diff != "" {
		t.Fatalf("wavelength mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2.0e-14, 2.5e-14}, table.Flux); diff != "" {
		t.Fatalf("flux mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1.0e-15, 1.1e-15}, table.Uncertainty); diff != "" {
		t.Fatalf("uncertainty mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLowDispersionRemovesSentinelFlux(t *testing.T) {
	table, err := spectrum.Decode(lowRecord(
		"1150.0 -1 1.0e-15",
		"1151.0 2.0e-14 1.0e-15",
	))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	assertAligned(t, table)
	if diff := cmp.Diff([]float64{1151.0}, table.Wavelength); diff != "" {
		t.Fatalf("wavelength mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeHighDispersionScenario(t *testing.T) {
	table, err := spectrum.Decode(highRecord(scenarioGrid, "1.0 0.1", "-1 0.2"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if table.Layout != spectrum.HighDispersion {
		t.Fatalf("layout = %s, want high dispersion", table.Layout)
	}
	if diff := cmp.Diff([]float64{4000.0}, table.Wavelength); diff != "" {
		t.Fatalf("wavelength mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1.0}, table.Flux); diff != "" {
		t.Fatalf("flux mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.1}, table.Uncertainty); diff != "" {
		t.Fatalf("uncertainty mismatch (-want +got):\n%s", diff)
	}
	if len(table.Header) != 19 || table.Header[18] != scenarioGrid {
		t.Fatalf("expected 19 header lines ending with the grid line, got %d", len(table.Header))
	}
}

func TestDecodeHighDispersionIgnoresBackgroundColumn(t *testing.T) {
	table, err := spectrum.Decode(highRecord(scenarioGrid, "1.0 0.1 7.5", "2.0 0.2 7.6"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if diff := cmp.Diff([]float64{1.0, 2.0}, table.Flux); diff != "" {
		t.Fatalf("flux mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeHighDispersionAdjacentSentinels(t *testing.T) {
	table, err := spectrum.Decode(highRecord(scenarioGrid,
		"-1 0.0",
		"-1 0.0",
		"3.0 0.3",
		"-1 0.0",
		"-1 0.0",
		"-1 0.0",
		"7.0 0.7",
		"8.0 0.8",
		"-1 0.0",
	))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	assertAligned(t, table)
	want := []spectrum.Sample{
		{Wavelength: 4000.0 + 2*2.5, Flux: 3.0, Uncertainty: 0.3},
		{Wavelength: 4000.0 + 6*2.5, Flux: 7.0, Uncertainty: 0.7},
		{Wavelength: 4000.0 + 7*2.5, Flux: 8.0, Uncertainty: 0.8},
	}
	if diff := cmp.Diff(want, table.Samples()); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeHighDispersionWavelengthIsArithmetic(t *testing.T) {
	const start, delta = 1850.0, 0.05
	grid := fmt.Sprintf("w(k) = +%g, dw = %g* k, k=0,%d", start, delta, 49)
	body := make([]string, 50)
	for i := range body {
		if i%7 == 3 {
			body[i] = "-1 0.0"
			continue
		}
		body[i] = fmt.Sprintf("%d 0.01", i+1)
	}
	table, err := spectrum.Decode(highRecord(grid, body...))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	assertAligned(t, table)
	if table.Len() != 43 {
		t.Fatalf("expected 43 retained samples, got %d", table.Len())
	}
	for j, flux := range table.Flux {
		index := int(flux) - 1
		if want := delta*float64(index) + start; table.Wavelength[j] != want {
			t.Fatalf("wavelength[%d] = %v, want %v for source index %d", j, table.Wavelength[j], want, index)
		}
	}
}

func TestDecodeHighDispersionAllSentinels(t *testing.T) {
	table, err := spectrum.Decode(highRecord(scenarioGrid, "-1 0.1", "-1 0.2", "-1 0.3"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if table.Len() != 0 || len(table.Wavelength) != 0 || len(table.Uncertainty) != 0 {
		t.Fatalf("expected empty table, got %+v", table)
	}
	if table.Wavelength == nil || table.Flux == nil || table.Uncertainty == nil {
		t.Fatal("expected empty, non-nil columns")
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	records := [][]string{
		lowRecord("4500.0 1.2e-13 3.0e-15", "4501.0 1.3e-13 3.1e-15"),
		highRecord(scenarioGrid, "1.0 0.1", "-1 0.2", "3.0 0.3"),
	}
	for _, record := range records {
		first, err := spectrum.Decode(record)
		if err != nil {
			t.Fatalf("first Decode returned error: %v", err)
		}
		second, err := spectrum.Decode(record)
		if err != nil {
			t.Fatalf("second Decode returned error: %v", err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("decode not idempotent (-first +second):\n%s", diff)
		}
	}
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	record := lowRecord("4500.0 1.2e-13 3.0e-15")
	table, err := spectrum.Decode(record)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	table.Header[0] = "mutated"
	if record[0] == "mutated" {
		t.Fatal("header shares storage with the input lines")
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantLine int
	}{
		{"too short to classify", headerLines(10), -1},
		{"exactly header no marker", headerLines(18), -1},
		{"high without terminator room", append(headerLines(18), scenarioGrid), -1},
		{"low non numeric", lowRecord("4500.0 abc 3.0e-15"), 18},
		{"low nan flux", lowRecord("4500.0 nan 3.0e-15"), 18},
		{"low infinite wavelength", lowRecord("4500.0 1.2e-13 3.0e-15", "+Inf 1.2e-13 3.0e-15"), 19},
		{"high nan uncertainty", highRecord(scenarioGrid, "1.0 NaN"), 19},
		{"high infinite start", highRecord("w(k) =+inf, dw =2.5* k, k = 0,99", "1.0 0.1"), 18},
		{"low too few columns", lowRecord("4500.0 1.2e-13 3.0e-15", "4501.0 1.2e-13"), 19},
		{"low blank body line", lowRecord("4500.0 1.2e-13 3.0e-15", ""), 19},
		{"high non numeric", highRecord(scenarioGrid, "1.0 0.1", "x 0.2"), 20},
		{"high one column", highRecord(scenarioGrid, "1.0"), 19},
		{"high bad start", highRecord("w(k) =+abc, dw =2.5* k, k = 0,99", "1.0 0.1"), 18},
		{"high bad delta", highRecord("w(k) =+4000.0, dw =two* k, k = 0,99", "1.0 0.1"), 18},
		{"high bad count", highRecord("w(k) =+4000.0, dw =2.5* k, k = 0,many", "1.0 0.1"), 18},
		{"high missing star", highRecord("w(k) =+4000.0, dw =2.5 k, k = 0,99", "1.0 0.1"), 18},
		{"high body exceeds grid", highRecord("w(k) =+4000.0, dw =2.5* k, k = 0,0", "1.0 0.1", "2.0 0.2"), 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := spectrum.Decode(tt.lines)
			if err == nil {
				t.Fatalf("expected error, got table with %d samples", table.Len())
			}
			if table.Len() != 0 || table.Header != nil {
				t.Fatalf("expected zero table on failure, got %+v", table)
			}
			var malformed *spectrum.MalformedRecordError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedRecordError, got %T: %v", err, err)
			}
			if malformed.Line != tt.wantLine {
				t.Fatalf("line = %d, want %d (%v)", malformed.Line, tt.wantLine, err)
			}
			if tt.wantLine >= 0 && malformed.Text != tt.lines[tt.wantLine] {
				t.Fatalf("text = %q, want %q", malformed.Text, tt.lines[tt.wantLine])
			}
			if !errors.Is(err, services.ErrMalformed) {
				t.Fatalf("expected error to match services.ErrMalformed: %v", err)
			}
			if services.Retryable(err) {
				t.Fatal("malformed records must not be retryable")
			}
		})
	}
}

func TestDecodeLowWithEmptyBody(t *testing.T) {
	table, err := spectrum.Decode(append(headerLines(18), "  1150.0 1 1"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("expected no samples when only the terminator follows the header, got %d", table.Len())
	}
}

func TestSummarize(t *testing.T) {
	table, err := spectrum.Decode(lowRecord(
		"1000.0 2.0 0.1",
		"1001.0 4.0 0.1",
		"1002.0 6.0 0.1",
	))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	want := spectrum.Summary{
		Layout:        spectrum.LowDispersion,
		Samples:       3,
		WavelengthMin: 1000.0,
		WavelengthMax: 1002.0,
		FluxMin:       2.0,
		FluxMax:       6.0,
		FluxMean:      4.0,
	}
	if diff := cmp.Diff(want, table.Summarize()); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if got := (spectrum.SampleTable{}).Summarize(); got.Samples != 0 || got.FluxMean != 0 {
		t.Fatalf("expected zero summary for empty table, got %+v", got)
	}
}

func assertAligned(t *testing.T, table spectrum.SampleTable) {
	t.Helper()
	if len(table.Wavelength) != len(table.Flux) || len(table.Flux) != len(table.Uncertainty) {
		t.Fatalf("columns out of alignment: %d/%d/%d", len(table.Wavelength), len(table.Flux), len(table.Uncertainty))
	}
	for i, f := range table.Flux {
		if f == spectrum.Sentinel {
			t.Fatalf("sentinel flux left at index %d", i)
		}
	}
}
