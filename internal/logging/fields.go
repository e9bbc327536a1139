package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

const (
	// FieldTier is the archive storage tier of a fetched record.
	FieldTier = "tier"
	// FieldSamples counts decoded (wavelength, flux, uncertainty) triples.
	FieldSamples = "samples"
	// FieldLatency is the wall time of one remote request.
	FieldLatency = "latency"
	// FieldWavelength groups the span of a decoded table in Angstroms.
	FieldWavelength = "wavelength"
)

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Dataset tags a line with the archive dataset it concerns. The console
// handler promotes it into the line prefix.
func Dataset(id string) Attr { return slog.String(FieldDatasetID, id) }

func Tier(tier string) Attr { return slog.String(FieldTier, tier) }

func Samples(n int) Attr { return slog.Int(FieldSamples, n) }

func Latency(d time.Duration) Attr { return slog.Duration(FieldLatency, d) }

// WavelengthSpan renders as wavelength.min / wavelength.max on the console.
func WavelengthSpan(lo, hi float64) Attr {
	return slog.Group(FieldWavelength, slog.Float64("min", lo), slog.Float64("max", hi))
}

func NewNop() *slog.Logger {
	return slog.New(noopHandler{})
}

// NewComponentLogger tags logger with a component name; nil selects a no-op
// base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning carrying event_type, error_hint, and impact.
// Fields already present in attrs win over the defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	emit(logger, slog.LevelWarn, msg, withEventDefaults(attrs, eventType, "operation completed with warnings"))
}

// ErrorWithContext is WarnWithContext at error level without an impact default.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	emit(logger, slog.LevelError, msg, withEventDefaults(attrs, eventType, ""))
}

func withEventDefaults(attrs []Attr, eventType, impact string) []Attr {
	defaults := []Attr{
		String(FieldEventType, eventType),
		String(FieldErrorHint, "check logs for details"),
	}
	if impact != "" {
		defaults = append(defaults, String(FieldImpact, impact))
	}
	for _, def := range defaults {
		if !hasKey(attrs, def.Key) {
			attrs = append(attrs, def)
		}
	}
	return attrs
}

func emit(logger *slog.Logger, level slog.Level, msg string, attrs []Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func hasKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (noopHandler) Handle(context.Context, slog.Record) error { return nil }

func (noopHandler) WithAttrs([]slog.Attr) slog.Handler { return noopHandler{} }

func (noopHandler) WithGroup(string) slog.Handler { return noopHandler{} }
