// Package printing drives headless Chrome to print documents to PDF and to
// rasterize charts, and inspects the PDFs it produces.
// Requires Chrome/Chromium to be installed on the system.
package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/charts"
)

// DefaultTimeout bounds a single print or screenshot.
const DefaultTimeout = 60 * time.Second

// Options configures the browser.
type Options struct {
	Timeout time.Duration
	// ExecPath overrides Chrome discovery when set.
	ExecPath string
}

// Chrome prints HTML and rasterizes charts with a fresh headless browser per
// call. It is safe for concurrent use.
type Chrome struct {
	opts     Options
	renderer *charts.Renderer
	brand    brand.Config
	logger   *zap.Logger
}

// NewChrome creates a Chrome driver.
func NewChrome(b brand.Config, opts Options, logger *zap.Logger) *Chrome {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chrome{opts: opts, renderer: charts.New(b), brand: b, logger: logger}
}

// PaperSize is a page size in inches.
type PaperSize struct {
	Width  float64
	Height float64
}

// Letter is US letter paper.
var Letter = PaperSize{Width: 8.5, Height: 11}

// PrintPDF loads html into a blank page and prints it. Page margins come from
// the document's own CSS.
func (c *Chrome) PrintPDF(ctx context.Context, html string, paper PaperSize) ([]byte, error) {
	start := time.Now()
	var pdf []byte

	err := c.run(ctx, "print",
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paper.Width).
				WithPaperHeight(paper.Height).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("printed PDF",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)),
	)
	return pdf, nil
}

// RasterizeChart renders the chart's SVG in the browser and screenshots it as PNG.
func (c *Chrome) RasterizeChart(ctx context.Context, spec charts.Spec, width, height int) ([]byte, error) {
	if width == 0 {
		width = charts.DefaultWidth
	}
	if height == 0 {
		height = charts.DefaultHeight
	}
	svg, err := c.renderer.Render(spec, width, height)
	if err != nil {
		return nil, err
	}

	doc := fmt.Sprintf(`<!DOCTYPE html><html><body style="margin:0;background:%s">%s</body></html>`, c.brand.Colors.Primary, svg)
	var png []byte
	err = c.run(ctx, "screenshot",
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate("about:blank"),
		setContent(doc),
		chromedp.Screenshot("svg", &png, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}
	return png, nil
}

func (c *Chrome) run(ctx context.Context, operation string, actions ...chromedp.Action) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, c.opts.Timeout)
	defer cancel()

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return &BrowserError{Operation: operation, Message: "chromedp run failed", Cause: err}
	}
	return nil
}

// setContent replaces the current document, avoiding URL length limits on
// large documents with embedded images.
func setContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}
