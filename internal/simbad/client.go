package simbad

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"specfetch/internal/services"
)

// DefaultBaseURL is the root of the SIMBAD web service.
const DefaultBaseURL = "http://simbad.u-strasbg.fr/simbad"

const (
	scriptPath       = "/sim-script?script=format%20object%20%22"
	dataMarker       = "data"
	maxResponseBytes = 1 << 20
)

var scriptEscaper = strings.NewReplacer(
	" ", "%20",
	"%", "%25",
	"#", "%23",
	"(", "%28",
	")", "%29",
	"|", "%7c",
	"+", "%2b",
)

// Encode percent-encodes the characters reserved in a sim-script query.
func Encode(s string) string {
	return scriptEscaper.Replace(s)
}

// Client queries SIMBAD for properties of a single identifier and runs
// criteria searches that return lists of objects.
type Client struct {
	baseURL    string
	userAgent  string
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

// New creates a SIMBAD client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// ScriptURL builds the sim-script request that prints format for identifier.
func (c *Client) ScriptURL(identifier, format string) string {
	return c.baseURL + scriptPath + Encode(format) + "%22%0a" + Encode(identifier)
}

// query runs a format script and returns the non-empty lines of the data
// section, trimmed.
func (c *Client) query(ctx context.Context, identifier, format string) ([]string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, services.Wrap(services.ErrValidation, "simbad", "query", "identifier must not be empty", nil)
	}

	text, err := c.get(ctx, c.ScriptURL(identifier, format), "query", identifier)
	if err != nil {
		return nil, err
	}
	if strings.Contains(text, "not found") || strings.Contains(text, "error") {
		return nil, services.Wrap(services.ErrNotFound, "simbad", "query", fmt.Sprintf("%q could not be resolved", identifier), nil)
	}
	return dataLines(text), nil
}

// get performs one GET and returns the trimmed body. subject names the
// identifier or criteria in errors.
func (c *Client) get(ctx context.Context, target, op, subject string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "simbad", "build request", subject, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "simbad", op, fmt.Sprintf("%s (latency=%v)", subject, latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransport, "simbad", op,
			fmt.Sprintf("%s returned %d (latency=%v)", subject, resp.StatusCode, latency), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "simbad", "read response", subject, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// dataLines returns the lines following the last "data" marker, skipping the
// colon rule that frames the section.
func dataLines(text string) []string {
	if i := strings.LastIndex(text, dataMarker); i >= 0 {
		text = text[i+len(dataMarker):]
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.Trim(line, ":") == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
