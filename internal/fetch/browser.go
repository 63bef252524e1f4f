// Package fetch - browser.go renders script-heavy pages in a headless browser.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// If content is shorter, we should fall back to browser rendering.
const MinContentLength = 500

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely rendered by JavaScript.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("starting headless browser", zap.String("url", url))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give client-side rendering time to fill the page.
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	logger.Debug("rendered page", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}

// Page fetches a URL and extracts its main text using publisher-specific
// selectors. When useBrowser is set and the static text is too short, the page
// is rendered in a headless browser instead.
func Page(ctx context.Context, urlStr string, opts *Options, useBrowser bool, logger *zap.Logger) (*Result, error) {
	result, err := URL(ctx, urlStr, opts)
	if err != nil {
		return result, err
	}

	publisher := DetectPublisher(urlStr)
	text, err := ExtractMainText(result.HTML, PublisherContentSelectors(publisher), PublisherNoiseSelectors(publisher)...)
	if err != nil {
		return result, fmt.Errorf("failed to extract text from %s: %w", urlStr, err)
	}

	if useBrowser && ShouldUseBrowser(text) {
		timeout := DefaultTimeout
		if opts != nil && opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		rendered, berr := WithBrowser(ctx, urlStr, timeout, logger)
		if berr == nil {
			result.HTML = rendered
			if t, err := ExtractMainText(rendered, PublisherContentSelectors(publisher), PublisherNoiseSelectors(publisher)...); err == nil {
				text = t
			}
		} else if logger != nil {
			logger.Warn("browser fallback failed", zap.String("url", urlStr), zap.Error(berr))
		}
	}

	result.Text = text
	result.Title = ExtractTitle(result.HTML)
	return result, nil
}
