package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// BrowserSolver clears challenges the inline solver cannot parse by letting
// a headless Chrome execute the challenge script for real, then copying the
// clearance cookies into the shared jar. Requires Chrome/Chromium on the
// host, so it is config-gated and off by default.
type BrowserSolver struct {
	Jar       http.CookieJar
	UserAgent string
	Timeout   time.Duration
}

func (s *BrowserSolver) Solve(ctx context.Context, pageURL string, _ []byte) error {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("parse challenge url: %w", err)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(s.UserAgent),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var cookies []*network.Cookie
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		// The challenge script needs a few seconds before it redirects to
		// the real page and the clearance cookie lands.
		chromedp.Sleep(6*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var getErr error
			cookies, getErr = storage.GetCookies().Do(ctx)
			return getErr
		}),
	)
	if err != nil {
		return fmt.Errorf("browser challenge pass failed: %w", err)
	}

	imported := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		converted := &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HTTPOnly,
		}
		if cookie.Expires > 0 {
			converted.Expires = time.Unix(int64(cookie.Expires), 0)
		}
		imported = append(imported, converted)
	}
	if len(imported) == 0 {
		return fmt.Errorf("browser pass yielded no cookies")
	}

	s.Jar.SetCookies(parsed, imported)
	return nil
}
