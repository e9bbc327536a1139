package preflight

import (
	"context"
	"net/http"

	"specfetch/internal/config"
)

// Sections group results for display.
const (
	SectionStorage  = "storage"
	SectionServices = "services"
)

// Result reports the outcome of a single preflight check. Skipped checks
// count as passed.
type Result struct {
	Section string `json:"section"`
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail"`
}

// Options tunes RunAll.
type Options struct {
	// Network enables the remote endpoint checks.
	Network bool
	// HTTPClient overrides the client used for endpoint checks.
	HTTPClient *http.Client
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	historyCheck := Result{Name: "History", Passed: true, Skipped: true, Detail: "disabled"}
	if cfg.History.Enabled {
		historyCheck = CheckHistory(ctx, cfg.HistoryPath())
	}
	results := inSection(SectionStorage,
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		historyCheck,
	)

	endpoints := []struct{ name, url string }{
		{"IUE archive", cfg.Archive.BaseURL},
		{"MAST", cfg.MAST.BaseURL},
		{"SIMBAD", cfg.SIMBAD.BaseURL},
	}
	services := make([]Result, 0, len(endpoints))
	for _, ep := range endpoints {
		if !opts.Network {
			services = append(services, Result{Name: ep.name, Passed: true, Skipped: true, Detail: "not checked"})
			continue
		}
		services = append(services, CheckEndpoint(ctx, opts.HTTPClient, ep.name, ep.url+"/", cfg.Archive.UserAgent))
	}
	return append(results, inSection(SectionServices, services...)...)
}

func inSection(section string, results ...Result) []Result {
	for i := range results {
		results[i].Section = section
	}
	return results
}

// Failed counts the results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
