package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"specfetch/internal/history"
)

const endpointTimeout = 5 * time.Second

// CheckEndpoint verifies that url answers HTTP. Any status below 500 counts
// as reachable since archive roots commonly answer 403 or 404.
func CheckEndpoint(ctx context.Context, client *http.Client, name, url, userAgent string) Result {
	if strings.TrimSpace(url) == "" || strings.TrimSpace(url) == "/" {
		return Result{Name: name, Detail: "missing url"}
	}
	if client == nil {
		client = &http.Client{Timeout: endpointTimeout}
	}

	checkCtx, cancel := context.WithTimeout(ctx, endpointTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", url, err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start).Round(time.Millisecond)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (unreachable: %v)", url, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("%s (server error %d)", url, resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (HTTP %d, %v)", url, resp.StatusCode, latency)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckHistory opens the ledger, which also verifies its schema version.
func CheckHistory(ctx context.Context, path string) Result {
	const name = "History"

	store, err := history.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	entries, err := store.List(ctx, history.ListOptions{Limit: 1})
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if len(entries) == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (empty)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (last fetch %s)", path, entries[0].CreatedAt.Local().Format(time.DateTime))}
}
