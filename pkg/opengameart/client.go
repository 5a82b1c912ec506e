package opengameart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"audiofetch/pkg/config"
	errs "audiofetch/pkg/errors"
	"audiofetch/pkg/logger"
	"audiofetch/pkg/ratelimit"
	"audiofetch/pkg/retry"
)

// Client fetches pages and audio files from the asset site
type Client struct {
	httpClient  *http.Client
	headers     map[string]string
	logger      logger.Logger
	limiter     ratelimit.Limiter
	retry       *retry.Config
	maxFileSize int64

	respectRobots bool
	robots        *RobotsPolicy
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter paces every request through l
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithRetry sets the per-request retry policy
func WithRetry(cfg *retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithMaxFileSize rejects downloads larger than n bytes. Zero means no limit.
func WithMaxFileSize(n int64) Option {
	return func(c *Client) { c.maxFileSize = n }
}

// WithRobots checks every URL against the host's robots.txt before fetching
func WithRobots(enabled bool) Option {
	return func(c *Client) { c.respectRobots = enabled }
}

// NewClient creates a new site client
func NewClient(site config.SiteConfig, timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      site.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		logger:  log,
		limiter: ratelimit.Unlimited{},
		retry:   retry.DefaultConfig(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.respectRobots {
		c.robots = NewRobotsPolicy(c.httpClient, site.UserAgent, c.logger)
	}

	return c
}

// FetchPage downloads an HTML page and returns its body
func (c *Client) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	c.logger.DebugWithFields("fetching page", map[string]interface{}{
		"url": pageURL,
	})

	body, err := c.fetch(ctx, pageURL, 0)
	if err != nil {
		c.logger.WarnWithFields("failed to fetch page", map[string]interface{}{
			"url":   pageURL,
			"error": err.Error(),
		})
		return nil, err
	}

	return body, nil
}

// Download fetches an audio file and returns its bytes
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	data, err := c.fetch(ctx, fileURL, c.maxFileSize)
	if err != nil {
		return nil, err
	}

	c.logger.DebugWithFields("downloaded file", map[string]interface{}{
		"url":  fileURL,
		"size": len(data),
	})

	return data, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	if c.robots != nil && !c.robots.Allowed(ctx, rawURL) {
		return nil, errs.New(errs.ErrorTypeDisallowed, 0, "robots.txt disallows %s", rawURL)
	}

	return retry.DoWithResult(ctx, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.get(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if err := c.checkResponseStatus(resp); err != nil {
			return nil, err
		}

		return readBody(resp, limit)
	}, c.retry)
}

// get performs a GET request with the configured headers
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":         rawURL,
			"error":       err.Error(),
			"duration_ms": duration.Milliseconds(),
		})
		return nil, errs.New(errs.ErrorTypeNetwork, 0, "%v", err)
	}

	logger.LogRequest(c.logger, req.Method, rawURL, resp.StatusCode, duration.Milliseconds())
	return resp, nil
}

// checkResponseStatus maps a non-2xx response to a typed error
func (c *Client) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	e := errs.FromStatusCode(resp.StatusCode)
	e.Message = fmt.Sprintf("%s: %s", e.Message, resp.Request.URL.String())
	return e
}

func readBody(resp *http.Response, limit int64) ([]byte, error) {
	if limit > 0 && resp.ContentLength > limit {
		return nil, errs.New(errs.ErrorTypeTooLarge, resp.StatusCode,
			"file is %d bytes, limit is %d", resp.ContentLength, limit)
	}

	var reader io.Reader = resp.Body
	if limit > 0 {
		reader = io.LimitReader(resp.Body, limit+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	if limit > 0 && int64(len(data)) > limit {
		return nil, errs.New(errs.ErrorTypeTooLarge, resp.StatusCode, "file exceeds limit of %d bytes", limit)
	}

	return data, nil
}
