// Package probe fetches public profile pages to estimate an account's post
// volume.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"twharvest/pkg/config"
	errs "twharvest/pkg/errors"
	"twharvest/pkg/handle"
	"twharvest/pkg/logger"
	"twharvest/pkg/ratelimit"
)

// Client fetches profile pages
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	selectors  []string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a probe client from cfg
func NewClient(cfg config.ProbeConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		headers: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
			"Sec-Fetch-Dest":  "document",
			"Sec-Fetch-Mode":  "navigate",
			"Sec-Fetch-Site":  "none",
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		selectors: cfg.CountSelectors,
		limiter:   ratelimit.NewPerMinute(cfg.RequestsPerMinute, cfg.Burst),
		logger:    log,
	}
	if cfg.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.UserAgent)
	}
	for key, value := range cfg.Headers {
		c.SetHeader(key, value)
	}
	return c
}

// SetHeader sets a header sent with every probe, replacing any default
func (c *Client) SetHeader(key, value string) {
	c.headers[http.CanonicalHeaderKey(key)] = value
}

// ProfileURL returns the public profile page of h
func (c *Client) ProfileURL(h handle.Handle) string {
	return c.baseURL + "/" + url.PathEscape(string(h))
}

// FetchProfile downloads and parses the profile page of h
func (c *Client) FetchProfile(ctx context.Context, h handle.Handle) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errs.New(errs.ErrorTypeProbe, "rate limiter wait aborted", err)
	}

	target := c.ProfileURL(h)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeProbe, "failed to create request", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    target,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      target,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.ErrorTypeProbe, "network error", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      target,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeProbe,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeProbe, "failed to parse profile page", err)
	}
	return doc, nil
}

// PostCount fetches the profile page of h and extracts its post count
func (c *Client) PostCount(ctx context.Context, h handle.Handle) (int, error) {
	doc, err := c.FetchProfile(ctx, h)
	if err != nil {
		return 0, err
	}
	return PostCount(doc, c.selectors)
}
