package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// DefaultRobotsTTL is how long a host's robots.txt is trusted before it is read again
const DefaultRobotsTTL = time.Hour

// EndpointPolicy is what a host's robots.txt says about one endpoint
type EndpointPolicy struct {
	Allowed    bool
	CrawlDelay time.Duration
}

type robotsEntry struct {
	data    *robotstxt.RobotsData // nil when robots.txt could not be read
	expires time.Time
}

// RobotsChecker reads robots.txt for SPARQL endpoint hosts.
//
// Each host is read at most once per TTL. An unreachable or unparsable
// robots.txt permits everything until it is read again.
type RobotsChecker struct {
	client *http.Client
	agent  string
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]robotsEntry
}

// NewRobotsChecker creates a checker sending userAgent. transport may be nil.
func NewRobotsChecker(userAgent string, timeout time.Duration, transport http.RoundTripper) *RobotsChecker {
	return &RobotsChecker{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		agent:   productToken(userAgent),
		ttl:     DefaultRobotsTTL,
		now:     time.Now,
		entries: make(map[string]robotsEntry),
	}
}

// SetTTL changes how long robots.txt answers are kept
func (r *RobotsChecker) SetTTL(ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ttl = ttl
}

// Policy returns the robots.txt verdict for endpoint. Only a malformed
// endpoint URL is an error.
func (r *RobotsChecker) Policy(ctx context.Context, endpoint string) (EndpointPolicy, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return EndpointPolicy{}, fmt.Errorf("robots: bad endpoint %q", endpoint)
	}

	data := r.rules(ctx, u)
	if data == nil {
		return EndpointPolicy{Allowed: true}, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	policy := EndpointPolicy{Allowed: data.TestAgent(path, r.agent)}
	if group := data.FindGroup(r.agent); group != nil {
		policy.CrawlDelay = group.CrawlDelay
	}
	return policy, nil
}

// rules returns the cached robots.txt of u's host, reading it when absent or stale
func (r *RobotsChecker) rules(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	r.mu.Lock()
	entry, ok := r.entries[u.Host]
	now, ttl := r.now(), r.ttl
	r.mu.Unlock()

	if ok && now.Before(entry.expires) {
		return entry.data
	}

	data, _ := r.fetch(ctx, u.Scheme+"://"+u.Host+"/robots.txt")
	if ctx.Err() != nil {
		// A cancelled read says nothing about the host
		return data
	}

	r.mu.Lock()
	r.entries[u.Host] = robotsEntry{data: data, expires: now.Add(ttl)}
	r.mu.Unlock()
	return data
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.agent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return robotstxt.FromResponse(resp)
}

// Forget drops every cached robots.txt
func (r *RobotsChecker) Forget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]robotsEntry)
}

// productToken reduces "nifrel/0.2 (+url)" to "nifrel", the form robots.txt groups use
func productToken(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	name, _, _ := strings.Cut(fields[0], "/")
	return name
}
