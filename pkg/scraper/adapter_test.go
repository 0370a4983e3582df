package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"milo-tracker/pkg/models"
)

type stubFetcher struct {
	html string
	err  error
	url  string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.url = url
	return f.html, f.err
}

func TestAdapterScrape(t *testing.T) {
	stub := &stubFetcher{html: extractFixture}
	cfg := testConfig()
	cfg.SearchURL = "https://shengsiong.com.sg/search?q=%s"
	adapter := NewAdapter(cfg, stub)

	listings, err := adapter.Scrape(context.Background(), "milo gao", 10)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if stub.url != "https://shengsiong.com.sg/search?q=milo+gao" {
		t.Errorf("search url = %q, want query-escaped term", stub.url)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if listings[0].Platform != models.PlatformShengSiong {
		t.Errorf("platform = %q", listings[0].Platform)
	}
}

func TestAdapterScrapeFetchError(t *testing.T) {
	wantErr := errors.New("net: connection refused")
	adapter := NewAdapter(testConfig(), &stubFetcher{err: wantErr})

	_, err := adapter.Scrape(context.Background(), "milo", 10)
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}

func TestAdapterWithStaticFetcher(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Logf("Received request for: %s", r.URL.String())
		fmt.Fprint(w, extractFixture)
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.BaseURL = ts.URL
	cfg.SearchURL = ts.URL + "/search?q=%s"
	adapter := NewAdapter(cfg, &StaticFetcher{})

	listings, err := adapter.Scrape(context.Background(), "milo", 10)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if listings[0].URL != ts.URL+"/p/milo-tin" {
		t.Errorf("url = %q, want link absolutized against the test server", listings[0].URL)
	}
}

func TestDefaultAdaptersCoverAllPlatforms(t *testing.T) {
	adapters := DefaultAdapters()
	if len(adapters) != len(models.Platforms) {
		t.Fatalf("got %d adapters, want %d", len(adapters), len(models.Platforms))
	}
	for i, p := range models.Platforms {
		if adapters[i].Platform() != p {
			t.Errorf("adapter %d serves %q, want %q (cycle order)", i, adapters[i].Platform(), p)
		}
	}
}
