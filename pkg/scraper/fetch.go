package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultFetchTimeout is the per-fetch budget. A platform that exceeds it is
// treated as failed for the cycle and retried on the next one.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher returns fully-rendered markup for a search URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// BrowserFetcher drives headless Chrome for storefronts that render their
// result grids client-side. Settle gives scripts time to populate the grid
// after the document is ready.
type BrowserFetcher struct {
	Timeout time.Duration
	Settle  time.Duration
}

func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	fetchCtx, cancelFetch := context.WithTimeout(browserCtx, timeout)
	defer cancelFetch()

	var html string
	err := chromedp.Run(fetchCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Sleep(f.Settle),
		chromedp.Evaluate(`document.documentElement.outerHTML`, &html),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp execution failed: %w", err)
	}
	return html, nil
}

// StaticFetcher downloads markup that is usable without script execution.
type StaticFetcher struct {
	Timeout time.Duration
}

func (f *StaticFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(timeout)

	var html string
	c.OnResponse(func(r *colly.Response) {
		html = string(r.Body)
	})

	if err := c.Visit(pageURL); err != nil {
		return "", err
	}
	if html == "" {
		return "", fmt.Errorf("empty response from %s", pageURL)
	}
	return html, nil
}
