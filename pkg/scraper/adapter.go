package scraper

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"milo-tracker/pkg/models"
)

// Adapter binds one platform's configuration to a fetcher. All per-platform
// behavior lives in the config; there is no per-platform code.
type Adapter struct {
	cfg     PlatformConfig
	fetcher Fetcher
}

// NewAdapter builds an adapter for cfg. A nil fetcher selects the default
// for the platform: headless Chrome for script-rendered storefronts, a
// plain collector otherwise.
func NewAdapter(cfg PlatformConfig, fetcher Fetcher) *Adapter {
	if fetcher == nil {
		if cfg.Dynamic {
			fetcher = &BrowserFetcher{Timeout: DefaultFetchTimeout, Settle: cfg.Settle}
		} else {
			fetcher = &StaticFetcher{Timeout: DefaultFetchTimeout}
		}
	}
	return &Adapter{cfg: cfg, fetcher: fetcher}
}

func (a *Adapter) Platform() models.Platform {
	return a.cfg.Platform
}

// Scrape fetches the search page for term and extracts up to maxResults
// listing containers.
func (a *Adapter) Scrape(ctx context.Context, term string, maxResults int) ([]models.Listing, error) {
	searchURL := fmt.Sprintf(a.cfg.SearchURL, url.QueryEscape(term))
	log.Printf("[%s] Navigating to %s", strings.ToUpper(string(a.cfg.Platform)), searchURL)

	html, err := a.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("%s fetch: %w", a.cfg.Platform, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%s parse: %w", a.cfg.Platform, err)
	}

	return ExtractListings(doc, a.cfg, maxResults), nil
}

// DefaultAdapters returns one adapter per supported platform, in cycle order.
func DefaultAdapters() []*Adapter {
	configs := Configs()
	adapters := make([]*Adapter, 0, len(configs))
	for _, cfg := range configs {
		adapters = append(adapters, NewAdapter(cfg, nil))
	}
	return adapters
}
