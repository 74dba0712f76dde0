// Package fetch - browser.go provides headless rendering for script-built forms.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// RenderSettle is how long scripts get to build the form after the body is ready.
const RenderSettle = 2 * time.Second

// NeedsRender reports whether fetched markup lacks form controls and should be
// rendered in a browser instead.
func NeedsRender(html string) bool {
	return !HasQuestions(html)
}

// Render loads url in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func Render(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, error) {
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
		chromedp.Sleep(RenderSettle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.Debug("rendered form", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}
