package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"specfetch/internal/spectrum"
	"specfetch/internal/testsupport"
)

func writeRecord(t *testing.T, dir, name string, gzipped bool, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := []byte(strings.Join(lines, "\n"))
	if gzipped {
		data = testsupport.GzipLines(t, lines)
	}
	testsupport.WriteFile(t, path, data)
	return path
}

func TestDecodeCommandSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	lines := testsupport.LowDispersionRecord("1150.0 2 0.1", "1151.0 -1 0.1", "1152.0 4 0.2")
	path := writeRecord(t, env.baseDir, "swp12345.mxlo.gz", true, lines)

	out, _, err := runCLI(t, []string{"decode", path}, env.configPath)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	requireContains(t, out, "Low Dispersion")
	requireContains(t, out, "1150 - 1152")
	requireContains(t, out, "Flux mean")
}

func TestDecodeCommandSamplesTSV(t *testing.T) {
	env := setupCLITestEnv(t)
	lines := testsupport.HighDispersionRecord(1800, 0.5, 10, "10 1", "-1 1", "30 3")
	path := writeRecord(t, env.baseDir, "lwr04567.txt", false, lines)

	out, _, err := runCLI(t, []string{"decode", "--samples", path}, env.configPath)
	if err != nil {
		t.Fatalf("decode --samples: %v", err)
	}
	want := "Wavelength\tFlux\tUncertainty\n1800\t10\t1\n1801\t30\t3\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCommandJSONAndExport(t *testing.T) {
	env := setupCLITestEnv(t)
	lines := testsupport.LowDispersionRecord("1150.0 2 0.1", "1152.0 4 0.2")
	path := writeRecord(t, env.baseDir, "swp00042.gz", true, lines)

	out, _, err := runCLI(t, []string{"--json", "decode", "--samples", "--export", "json", path}, env.configPath)
	if err != nil {
		t.Fatalf("decode --json: %v", err)
	}
	var payload decodeJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	wantSamples := []spectrum.Sample{
		{Wavelength: 1150, Flux: 2, Uncertainty: 0.1},
		{Wavelength: 1152, Flux: 4, Uncertainty: 0.2},
	}
	if diff := cmp.Diff(wantSamples, payload.Samples); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}
	if payload.Summary.Samples != 2 || payload.Summary.Layout != spectrum.LowDispersion {
		t.Fatalf("unexpected summary %+v", payload.Summary)
	}
	wantPath := filepath.Join(env.cfg.Paths.OutputDir, "swp00042.json")
	if payload.Path != wantPath {
		t.Fatalf("export path = %q, want %q", payload.Path, wantPath)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
}

func TestDecodeCommandMalformed(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeRecord(t, env.baseDir, "short.txt", false, testsupport.HeaderLines(5))

	_, _, err := runCLI(t, []string{"decode", path}, env.configPath)
	if err == nil {
		t.Fatal("expected malformed record error")
	}
	requireContains(t, err.Error(), "decode "+path)
}

func TestDecodeCommandRejectsNonFiniteValues(t *testing.T) {
	env := setupCLITestEnv(t)
	lines := testsupport.LowDispersionRecord("1150.0 2 0.1", "1151.0 nan 0.1")
	path := writeRecord(t, env.baseDir, "swp00043.txt", false, lines)

	out, _, err := runCLI(t, []string{"--json", "decode", "--export", "json", path}, env.configPath)
	if err == nil {
		t.Fatalf("expected malformed record error, got output %s", out)
	}
	requireContains(t, err.Error(), "not a finite number")
	if _, statErr := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "swp00043.json")); !os.IsNotExist(statErr) {
		t.Fatalf("no export expected for a rejected record, stat err %v", statErr)
	}
}

func TestDatasetIDFromPath(t *testing.T) {
	tests := map[string]string{
		"/tmp/swp04420.mxlo.gz": "swp04420",
		"lwr12345.gz":           "lwr12345",
		"plain":                 "plain",
	}
	for in, want := range tests {
		if got := datasetIDFromPath(in); got != want {
			t.Errorf("datasetIDFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
