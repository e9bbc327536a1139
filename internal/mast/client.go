package mast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"specfetch/internal/services"
)

// DefaultBaseURL is the root of the MAST search forms.
const DefaultBaseURL = "https://archive.stsci.edu"

const (
	searchPath       = "/search.php?action=Search&outputformat=CSV&coordformat=dec&"
	maxResponseBytes = 16 << 20
	noRowsFound      = "no rows found"
)

// Client runs MAST catalog searches.
type Client struct {
	baseURL    string
	userAgent  string
	maxRecords int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// WithMaxRecords sets the row limit used when a search does not set one.
func WithMaxRecords(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRecords = n
		}
	}
}

// New creates a MAST client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRecords: 100,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SearchURL builds the search form URL for a mission and criteria string.
func (c *Client) SearchURL(mission, criteria string) string {
	return c.baseURL + "/" + Encode(mission) + searchPath + Encode(criteria)
}

// query fetches a search result and returns the trimmed response text.
func (c *Client) query(ctx context.Context, mission, criteria string) (string, error) {
	target := c.SearchURL(mission, criteria)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "mast", "build request", mission, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "mast", "search", fmt.Sprintf("%s (latency=%v)", mission, latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransport, "mast", "search",
			fmt.Sprintf("%s returned %d (latency=%v)", mission, resp.StatusCode, latency), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "mast", "read response", mission, err)
	}

	text := strings.TrimSpace(string(body))
	if strings.Contains(text, "not found") || strings.Contains(text, "error") {
		return "", services.Wrap(services.ErrNotFound, "mast", "search", fmt.Sprintf("%s query could not be resolved", mission), nil)
	}
	return text, nil
}
