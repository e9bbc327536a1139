package spectrum_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"specfetch/internal/services"
	"specfetch/internal/spectrum"
)

func TestSplitAxisHeader(t *testing.T) {
	tests := []struct {
		line string
		want spectrum.AxisFields
	}{
		{
			line: "w(k) =+4000.0, dw =2.5* k, k = 0,99",
			want: spectrum.AxisFields{Start: "4000.0", Delta: "2.5", Count: "99"},
		},
		{
			line: " w = +1845.125 , dw=0.0521 * k, k= 0 , 768",
			want: spectrum.AxisFields{Start: "1845.125 ", Delta: "0.0521 ", Count: " 768"},
		},
	}
	for _, tt := range tests {
		got, err := spectrum.SplitAxisHeader(tt.line)
		if err != nil {
			t.Fatalf("SplitAxisHeader(%q) error: %v", tt.line, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("SplitAxisHeader(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestSplitAxisHeaderMissingDelimiters(t *testing.T) {
	tests := map[string]string{
		"w(k) = 4000.0, dw =2.5* k, k = 0,99": "start",
		"w(k) =+4000.0, dw =2.5 k, k = 0 99":  "delta",
		"w(k) +4000.0 dw 2.5* k":              "delta",
		"w(k) =+4000.0 dw =2.5* k k = 0 99":   "count",
	}
	for line, field := range tests {
		_, err := spectrum.SplitAxisHeader(line)
		var fieldErr *spectrum.FieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("SplitAxisHeader(%q) expected FieldError, got %v", line, err)
		}
		if fieldErr.Field != field {
			t.Fatalf("SplitAxisHeader(%q) field = %q, want %q", line, fieldErr.Field, field)
		}
	}
}

func TestAxis(t *testing.T) {
	got, err := spectrum.Axis(" 4000.0", "2.5 ", "3")
	if err != nil {
		t.Fatalf("Axis returned error: %v", err)
	}
	want := []float64{4000.0, 4002.5, 4005.0, 4007.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("axis mismatch (-want +got):\n%s", diff)
	}
}

func TestAxisZeroCountYieldsSingleSample(t *testing.T) {
	got, err := spectrum.Axis("1150", "1.2", "0")
	if err != nil {
		t.Fatalf("Axis returned error: %v", err)
	}
	if diff := cmp.Diff([]float64{1150}, got); diff != "" {
		t.Fatalf("axis mismatch (-want +got):\n%s", diff)
	}
}

func TestAxisFieldErrors(t *testing.T) {
	tests := []struct {
		name                string
		start, delta, count string
		field               string
	}{
		{"bad start", "abc", "1", "2", "start"},
		{"bad delta", "1", "", "2", "delta"},
		{"bad count", "1", "1", "2.5", "count"},
		{"nan start", "NaN", "1", "2", "start"},
		{"infinite delta", "1", "-inf", "2", "delta"},
		{"negative count", "1", "1", "-5", "count"},
		{"oversized count", "1", "1", "99999999", "count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := spectrum.Axis(tt.start, tt.delta, tt.count)
			var fieldErr *spectrum.FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fieldErr.Field != tt.field {
				t.Fatalf("field = %q, want %q", fieldErr.Field, tt.field)
			}
			if !errors.Is(err, services.ErrMalformed) {
				t.Fatalf("expected ErrMalformed match: %v", err)
			}
		})
	}
}

func TestAxisEmptyGrid(t *testing.T) {
	got, err := spectrum.Axis("1", "1", "-1")
	if err != nil {
		t.Fatalf("Axis returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty grid, got %v", got)
	}
}
