package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode"

	"specfetch/internal/logging"
)

// DefaultBaseURL is the public root of the IUE preview archive.
const DefaultBaseURL = "http://archive.stsci.edu/missions/iue/previews/mx"

// maxPayloadBytes caps both the compressed and decompressed payload. Preview
// files are a few hundred kilobytes.
const maxPayloadBytes = 64 << 20

var errPayloadTooLarge = errors.New("payload exceeds size limit")

// Record is one decompressed archive payload with its provenance.
type Record struct {
	DatasetID string
	Tier      string
	URL       string
	lines     []string
}

// NewRecord builds a Record from already split lines, for payloads read from
// disk or produced in tests.
func NewRecord(datasetID, tier, url string, lines []string) Record {
	return Record{DatasetID: datasetID, Tier: tier, URL: url, lines: slices.Clone(lines)}
}

// Lines returns the payload lines in file order. Callers must not modify the
// returned slice.
func (r Record) Lines() []string {
	return r.lines
}

// Fetcher retrieves archive records.
type Fetcher interface {
	Fetch(ctx context.Context, datasetID, tier string) (Record, error)
}

// Client fetches preview records over HTTP. It holds no per-call state and is
// safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Fetcher = (*Client)(nil)

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

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an archive client rooted at baseURL. An empty baseURL selects
// DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// URL returns the absolute location of a dataset's preview file.
func (c *Client) URL(datasetID, tier string) (string, error) {
	path, err := Path(datasetID, tier)
	if err != nil {
		return "", err
	}
	return c.baseURL + "/" + path, nil
}

// Fetch downloads and decompresses one preview record.
func (c *Client) Fetch(ctx context.Context, datasetID, tier string) (Record, error) {
	datasetID = strings.TrimSpace(datasetID)
	target, err := c.URL(datasetID, tier)
	if err != nil {
		return Record{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Record{}, &TransportError{DatasetID: datasetID, URL: target, Err: fmt.Errorf("build request: %w", err)}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, &TransportError{DatasetID: datasetID, URL: target, Latency: time.Since(requestStart), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Record{}, &TransportError{DatasetID: datasetID, URL: target, Status: resp.StatusCode, Latency: time.Since(requestStart)}
	}

	compressed, err := readLimited(resp.Body)
	latency := time.Since(requestStart)
	if err != nil {
		return Record{}, &TransportError{DatasetID: datasetID, URL: target, Status: resp.StatusCode, Latency: latency, Err: fmt.Errorf("read body: %w", err)}
	}

	text, err := gunzip(compressed)
	if err != nil {
		return Record{}, &DecompressionError{DatasetID: datasetID, URL: target, Err: err}
	}

	lines := SplitLines(text)
	c.logger.Debug("archive record fetched",
		logging.Dataset(datasetID),
		logging.Tier(tier),
		logging.String("url", target),
		logging.Int("compressed_bytes", len(compressed)),
		logging.Int("lines", len(lines)),
		logging.Latency(latency),
	)
	return Record{DatasetID: datasetID, Tier: tier, URL: target, lines: lines}, nil
}

// Decompress gunzips a payload read from outside the archive, such as a
// downloaded file, and splits it into lines. source names the payload in
// errors.
func Decompress(source string, data []byte) ([]string, error) {
	text, err := gunzip(data)
	if err != nil {
		return nil, &DecompressionError{URL: source, Err: err}
	}
	return SplitLines(text), nil
}

// SplitLines splits text on '\n' and strips trailing whitespace, including
// '\r', from every line. No line is dropped, so a payload ending in a newline
// yields a final empty line.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return lines
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPayloadBytes {
		return nil, errPayloadTooLarge
	}
	return data, nil
}

func gunzip(data []byte) (string, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer reader.Close()
	text, err := readLimited(reader)
	if err != nil {
		return "", err
	}
	return string(text), nil
}
