package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

/* Client talks to the payment provider's REST API.
 * Every call carries the API key and collector id headers, runs once
 * (no retries) and is bounded by the per-route timeout.
 */

const (
	headerAPIKey      = "X-Api-Key"
	headerCollectorID = "X-Collector-Id"

	defaultTimeout = 10 * time.Second
)

// Call describes a single outbound request to the provider.
type Call struct {
	Method  string
	Path    string // upstream path with placeholders already resolved
	Query   url.Values
	Body    []byte
	Timeout time.Duration
}

// Result carries the provider's response verbatim.
type Result struct {
	StatusCode int
	Body       []byte
}

// Success reports whether the provider answered with a 2xx status
func (r Result) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Client struct {
	baseURL     string
	apiKey      string
	collectorID string
	httpClient  *http.Client
	logger      zerolog.Logger
}

// NewClient creates a provider client. Credentials are attached per call
// and never logged.
func NewClient(baseURL, apiKey, collectorID string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		collectorID: collectorID,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

/* Do performs a single authenticated upstream attempt.
 * A non-nil error means the provider was never reached (or timed out);
 * a non-2xx Result means it answered and the caller decides what to relay.
 */
func (c *Client) Do(ctx context.Context, call Call) (Result, error) {
	timeout := call.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	var body io.Reader
	if len(call.Body) > 0 {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return Result{}, fmt.Errorf("building upstream request: %w", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerCollectorID, c.collectorID)
	if len(call.Body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("calling upstream: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading upstream response: %w", err)
	}

	c.logger.Debug().
		Str("method", call.Method).
		Str("path", call.Path).
		Int("status", resp.StatusCode).
		Msg("upstream call")

	return Result{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}
