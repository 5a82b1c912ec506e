package opengameart

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"audiofetch/pkg/logger"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy caches robots.txt per host and answers whether a URL may be
// fetched. Hosts whose robots.txt cannot be fetched are allowed.
type RobotsPolicy struct {
	httpClient *http.Client
	userAgent  string
	logger     logger.Logger

	mu     sync.Mutex
	robots map[string]*robotstxt.RobotsData
}

// NewRobotsPolicy creates a policy that tests paths against userAgent
func NewRobotsPolicy(httpClient *http.Client, userAgent string, log logger.Logger) *RobotsPolicy {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RobotsPolicy{
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     log,
		robots:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched
func (p *RobotsPolicy) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := parsed.Scheme + "://" + parsed.Host

	p.mu.Lock()
	robots, cached := p.robots[host]
	p.mu.Unlock()

	if !cached {
		robots = p.fetch(ctx, host)
		p.mu.Lock()
		p.robots[host] = robots
		p.mu.Unlock()
	}

	if robots == nil {
		return true
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return robots.TestAgent(path, p.userAgent)
}

func (p *RobotsPolicy) fetch(ctx context.Context, host string) *robotstxt.RobotsData {
	robotsURL := host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.WarnWithFields("robots.txt unavailable, allowing all paths", map[string]interface{}{
			"url":   robotsURL,
			"error": err.Error(),
		})
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		p.logger.WarnWithFields("robots.txt unparseable, allowing all paths", map[string]interface{}{
			"url":   robotsURL,
			"error": err.Error(),
		})
		return nil
	}

	p.logger.DebugWithFields("loaded robots.txt", map[string]interface{}{
		"url":    robotsURL,
		"status": resp.StatusCode,
	})
	return robots
}
