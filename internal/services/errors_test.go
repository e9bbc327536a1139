package services_test

import (
	"errors"
	"strings"
	"testing"

	"specfetch/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransport, "archive", "fetch", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"archive", "fetch", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected default transport marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestRetryableAndKind(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		kind      string
	}{
		{"nil", nil, false, ""},
		{"transport", services.Wrap(services.ErrTransport, "archive", "fetch", "", nil), true, "transport"},
		{"decompression", services.Wrap(services.ErrDecompression, "archive", "gunzip", "", nil), false, "decompression"},
		{"malformed", services.Wrap(services.ErrMalformed, "spectrum", "decode", "", nil), false, "malformed"},
		{"not found", services.Wrap(services.ErrNotFound, "simbad", "query", "", nil), false, "not_found"},
		{"plain", errors.New("other"), false, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Retryable(tt.err); got != tt.retryable {
				t.Fatalf("Retryable = %v, want %v", got, tt.retryable)
			}
			if got := services.Kind(tt.err); got != tt.kind {
				t.Fatalf("Kind = %q, want %q", got, tt.kind)
			}
		})
	}
}
