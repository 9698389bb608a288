// Package sparql queries a remote SPARQL endpoint for Wiki page IDs.
package sparql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/nifrel/internal/metric"
	"github.com/ppiankov/nifrel/internal/util"
	"github.com/ppiankov/nifrel/internal/worker"
)

var (
	// ErrEndpoint marks failures to get an answer from the endpoint, as opposed to an
	// answer with no rows
	ErrEndpoint = errors.New("sparql endpoint failure")

	// ErrDisallowed is returned when robots.txt forbids querying the endpoint
	ErrDisallowed = errors.New("endpoint disallowed by robots.txt")
)

const (
	resultsMediaType = "application/sparql-results+json"
	maxResponseBytes = 1 << 20
)

// retrySleepFunc waits between retries (injectable for tests)
var retrySleepFunc = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Options configures a Client
type Options struct {
	Endpoint   string
	Timeout    time.Duration // per request
	UserAgent  string
	MaxRetries int // total attempts, at least 1

	Transport http.RoundTripper   // nil for http.DefaultTransport
	Limiter   *worker.Limiter     // nil disables rate limiting
	Robots    *util.RobotsChecker // nil skips robots.txt checks
	Logger    *slog.Logger
	Metrics   *metric.Metrics
}

// Client sends SELECT queries to a SPARQL endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	maxRetries int
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	logger     *slog.Logger
	metrics    *metric.Metrics
}

// NewClient creates a client for the endpoint in opts
func NewClient(opts Options) (*Client, error) {
	parsed, err := url.Parse(opts.Endpoint)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("invalid endpoint URL %q", opts.Endpoint)
	}

	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		endpoint: opts.Endpoint,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		limiter:    opts.Limiter,
		robots:     opts.Robots,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}, nil
}

// Endpoint returns the endpoint URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// BuildQuery returns the single-result Wiki page ID query for ref.
// ref must already be a valid IRI.
func BuildQuery(ref string) string {
	return "PREFIX dbo: <http://dbpedia.org/ontology/>\n" +
		"SELECT ?id WHERE { <" + ref + "> dbo:wikiPageID ?id . } LIMIT 1"
}

// LookupWikiID asks the endpoint for the Wiki page ID of ref.
// found is false when the endpoint answered with no rows.
func (c *Client) LookupWikiID(ctx context.Context, ref string) (id int64, found bool, err error) {
	results, err := c.Select(ctx, BuildQuery(ref))
	if err != nil {
		return 0, false, err
	}

	bindings := results.Results.Bindings
	if len(bindings) == 0 {
		return 0, false, nil
	}

	value, ok := bindings[0]["id"]
	if !ok {
		return 0, false, nil
	}

	id, err = strconv.ParseInt(strings.TrimSpace(value.Value), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: id %q is not an integer", ErrEndpoint, value.Value)
	}

	return id, true, nil
}

// Select runs a SELECT query, retrying transient failures with exponential backoff
func (c *Client) Select(ctx context.Context, query string) (*Results, error) {
	if err := c.checkRobots(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		results, err := c.selectOnce(ctx, query)
		if err == nil {
			return results, nil
		}
		lastErr = err

		if !isRetryableQueryError(err) || ctx.Err() != nil {
			break
		}
		if attempt < c.maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			c.logger.Debug("retrying sparql query", "endpoint", c.endpoint, "attempt", attempt+1, "backoff", backoff, "error", err)
			if err := retrySleepFunc(ctx, backoff); err != nil {
				lastErr = err
				break
			}
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrEndpoint, lastErr)
}

// selectOnce performs a single HTTP round trip
func (c *Client) selectOnce(ctx context.Context, query string) (*Results, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	params := reqURL.Query()
	params.Set("query", query)
	params.Set("format", resultsMediaType)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", resultsMediaType)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRemote("error", time.Since(start))
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.ObserveRemote(metric.StatusClass(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var results Results
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	return &results, nil
}

// checkRobots consults robots.txt for the endpoint when a checker is configured
func (c *Client) checkRobots(ctx context.Context) error {
	if c.robots == nil {
		return nil
	}

	policy, err := c.robots.Policy(ctx, c.endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEndpoint, err)
	}
	if !policy.Allowed {
		return fmt.Errorf("%w: %s", ErrDisallowed, c.endpoint)
	}
	if c.limiter != nil {
		c.limiter.ApplyCrawlDelay(c.endpoint, policy.CrawlDelay)
	}
	return nil
}

// StatusError is returned for non-2xx endpoint responses
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// isRetryableQueryError returns true for 5xx, 429 and network failures
func isRetryableQueryError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "timeout")
}
