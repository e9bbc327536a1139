package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"specfetch/internal/preflight"
)

type checkState int

const (
	checkOK checkState = iota
	checkSkipped
	checkFailed
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const checkLabelWidth = 18

var sectionTitles = []struct{ key, title string }{
	{preflight.SectionStorage, "Local storage"},
	{preflight.SectionServices, "Remote services"},
}

func stateOf(r preflight.Result) checkState {
	switch {
	case !r.Passed:
		return checkFailed
	case r.Skipped:
		return checkSkipped
	default:
		return checkOK
	}
}

func (s checkState) label() string {
	switch s {
	case checkFailed:
		return "FAIL"
	case checkSkipped:
		return "SKIP"
	default:
		return "OK"
	}
}

func (s checkState) color() string {
	switch s {
	case checkFailed:
		return ansiRed
	case checkSkipped:
		return ansiYellow
	default:
		return ansiGreen
	}
}

// renderChecks lays out preflight results under one heading per section, in
// the order the sections are declared. Results in an unknown section are
// listed last under their raw section name.
func renderChecks(results []preflight.Result, colorize bool) []string {
	lines := []string{paint("== specfetch status ==", ansiBlue, colorize)}
	seen := map[string]bool{}
	for _, sec := range sectionTitles {
		seen[sec.key] = true
		lines = appendSection(lines, sec.title, sec.key, results, colorize)
	}
	for _, r := range results {
		if !seen[r.Section] {
			seen[r.Section] = true
			lines = appendSection(lines, displayLabel(r.Section), r.Section, results, colorize)
		}
	}
	return lines
}

func appendSection(lines []string, title, key string, results []preflight.Result, colorize bool) []string {
	var body []string
	for _, r := range results {
		if r.Section == key {
			body = append(body, renderCheckLine(r, colorize))
		}
	}
	if len(body) == 0 {
		return lines
	}
	lines = append(lines, paint(title, ansiBlue, colorize))
	return append(lines, body...)
}

func renderCheckLine(r preflight.Result, colorize bool) string {
	state := stateOf(r)
	line := fmt.Sprintf("  %-*s [%s]", checkLabelWidth, r.Name+":", state.label())
	if detail := strings.TrimSpace(r.Detail); detail != "" {
		line += " " + detail
	}
	return paint(line, state.color(), colorize)
}

func paint(s, color string, colorize bool) string {
	if !colorize {
		return s
	}
	return color + s + ansiReset
}

// shouldColorize also decides between boxed tables and TSV output.
func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
