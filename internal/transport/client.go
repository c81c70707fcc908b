// Package transport issues catalog requests with browser-like fingerprinting
// and handles the catalog's anti-automation defenses: transient failures are
// retried with backoff, challenge pages get exactly one automated solve pass
// shared across concurrent callers, and lockouts surface as BlockedError.
package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0"

// Page is one fetched catalog response. FinalURL is the URL after redirects;
// identifier lookups rely on it to tell a product page from a search page.
type Page struct {
	Body       []byte
	StatusCode int
	FinalURL   string
}

// IsSearchPage reports whether the response landed on a search results page
// rather than being redirected to a product page.
func (p *Page) IsSearchPage() bool {
	return strings.Contains(p.FinalURL, "/search?")
}

// ChallengeSolver clears an anti-bot challenge for pageURL. On success the
// clearance cookies must be present in the shared jar.
type ChallengeSolver interface {
	Solve(ctx context.Context, pageURL string, body []byte) error
}

type Options struct {
	UserAgent   string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	// Solver overrides the built-in arithmetic challenge solver.
	Solver ChallengeSolver
	// Fallback runs when the primary solver cannot make sense of the
	// challenge page, e.g. a headless browser.
	Fallback ChallengeSolver
	// BrowserFallback enables the built-in headless Chrome solver as the
	// fallback. Requires Chrome/Chromium on the host.
	BrowserFallback bool
	Logger          *slog.Logger
}

// Client is safe for concurrent use. The cookie jar is the one piece of
// shared mutable state; challenge solving is serialized through a
// singleflight group so concurrent blocked workers await a single solve.
type Client struct {
	http        *http.Client
	jar         http.CookieJar
	userAgent   string
	maxRetries  int
	backoffBase time.Duration
	solver      ChallengeSolver
	fallback    ChallengeSolver
	solveGroup  singleflight.Group
	logger      *slog.Logger
}

func New(opts Options) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = 2
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 250 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	httpClient := &http.Client{
		Jar:     jar,
		Timeout: opts.Timeout,
	}

	client := &Client{
		http:        httpClient,
		jar:         jar,
		userAgent:   opts.UserAgent,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		solver:      opts.Solver,
		fallback:    opts.Fallback,
		logger:      opts.Logger,
	}
	if client.solver == nil {
		client.solver = &InlineSolver{HTTP: httpClient, UserAgent: opts.UserAgent}
	}
	if client.fallback == nil && opts.BrowserFallback {
		client.fallback = &BrowserSolver{Jar: jar, UserAgent: opts.UserAgent}
	}
	return client, nil
}

// Fetch retrieves rawURL. Transient network failures are retried up to the
// configured budget; a challenge response triggers one shared solve pass and
// one refetch; remaining non-2xx responses become TransportError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	page, err := c.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if isChallenge(page) {
		c.logger.Info("catalog served anti-bot challenge", "url", rawURL, "status", page.StatusCode)
		if err := c.solveShared(ctx, rawURL, page); err != nil {
			c.logger.Warn("challenge solve failed", "url", rawURL, "error", err)
			return nil, &BlockedError{StatusCode: page.StatusCode}
		}

		page, err = c.do(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if isChallenge(page) {
			return nil, &BlockedError{StatusCode: page.StatusCode}
		}
	}

	if page.StatusCode < 200 || page.StatusCode >= 300 {
		return nil, &TransportError{StatusCode: page.StatusCode}
	}
	return page, nil
}

// Cookies returns the jar's cookies for u, for persisting across runs.
func (c *Client) Cookies(u *url.URL) []*http.Cookie {
	return c.jar.Cookies(u)
}

// SetCookies seeds the jar, typically from a previous run's session store.
func (c *Client) SetCookies(u *url.URL, cookies []*http.Cookie) {
	c.jar.SetCookies(u, cookies)
}

// solveShared collapses concurrent solve attempts for the same host into a
// single in-flight pass that every blocked caller awaits.
func (c *Client) solveShared(ctx context.Context, rawURL string, page *Page) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	_, err, _ = c.solveGroup.Do(parsed.Host, func() (interface{}, error) {
		// Every blocked worker awaits this one attempt, so it must outlive
		// the caller that happened to start it. The solvers carry their own
		// timeouts.
		solveCtx := context.WithoutCancel(ctx)
		solveErr := c.solver.Solve(solveCtx, rawURL, page.Body)
		if solveErr != nil && c.fallback != nil {
			c.logger.Info("falling back to secondary challenge solver", "host", parsed.Host, "error", solveErr)
			solveErr = c.fallback.Solve(solveCtx, rawURL, page.Body)
		}
		return nil, solveErr
	})
	return err
}

func (c *Client) do(ctx context.Context, rawURL string) (*Page, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffBase << (attempt - 1)
			c.logger.Debug("retrying catalog request", "url", rawURL, "attempt", attempt, "backoff", backoff.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, &TransportError{Err: err}
		}
		c.applyHeaders(req)

		res, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, err := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		return &Page{
			Body:       body,
			StatusCode: res.StatusCode,
			FinalURL:   res.Request.URL.String(),
		}, nil
	}

	return nil, &TransportError{Err: lastErr}
}

// applyHeaders sets a consistent browser-like fingerprint. The catalog's
// edge rejects clients whose headers don't look like a real browser.
func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

var challengeMarkers = []string{
	"cf-browser-verification",
	"just a moment...",
	"_cf_chl",
	"jschl",
	"challenge-form",
}

func isChallenge(page *Page) bool {
	if page.StatusCode != http.StatusServiceUnavailable && page.StatusCode != http.StatusForbidden {
		return false
	}
	lower := strings.ToLower(string(page.Body))
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
