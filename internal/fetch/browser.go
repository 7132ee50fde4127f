package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/parallax-reel/internal/logging"
)

// DefaultRenderTimeout bounds one headless render including browser start.
const DefaultRenderTimeout = 45 * time.Second

// settleDelay lets client-side frameworks hydrate after the body is ready.
const settleDelay = 2 * time.Second

var chromeOptions = []chromedp.ExecAllocatorOption{
	chromedp.Headless,
	chromedp.DisableGPU,
	chromedp.NoSandbox,
	chromedp.Flag("disable-dev-shm-usage", true),
	chromedp.Flag("blink-settings", "imagesEnabled=false"),
	chromedp.UserAgent(userAgent),
}

// HeadlessRender loads rawURL in a local Chrome and returns the DOM after
// scripts ran. It needs a Chrome or Chromium binary on PATH.
func HeadlessRender(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	logger := logging.FromContext(ctx)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:], chromeOptions...)...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithErrorf(func(format string, args ...any) {
		logger.Debug("chrome", "message", fmt.Sprintf(format, args...))
	}))
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	started := time.Now()
	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", &Error{URL: rawURL, Op: "render", Err: err}
	}

	logger.Debug("page rendered", "url", rawURL, "bytes", len(html), "elapsed", time.Since(started))
	return html, nil
}
