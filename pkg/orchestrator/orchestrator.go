// Package orchestrator runs scrape cycles across all platform adapters with
// per-platform failure isolation.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"

	"milo-tracker/pkg/models"
	"milo-tracker/pkg/scraper"
)

// Caps simultaneous fetches so a cycle cannot spawn five browsers at once.
const maxConcurrentScrapes = 3

type Orchestrator struct {
	adapters []*scraper.Adapter
	term     string
	sem      chan struct{}
	mu       sync.Mutex // one cycle in flight at a time
}

func New(adapters []*scraper.Adapter, term string) *Orchestrator {
	return &Orchestrator{
		adapters: adapters,
		term:     term,
		sem:      make(chan struct{}, maxConcurrentScrapes),
	}
}

func (o *Orchestrator) Term() string {
	return o.term
}

// AdapterFor returns the adapter serving one platform.
func (o *Orchestrator) AdapterFor(p models.Platform) (*scraper.Adapter, bool) {
	for _, a := range o.adapters {
		if a.Platform() == p {
			return a, true
		}
	}
	return nil, false
}

type cycleResult struct {
	listings []models.Listing
	err      error
}

// RunCycle scrapes every platform and returns the listings keyed by platform
// plus the failures. A failed platform gets an empty (non-nil) listing list;
// the cycle always completes, even when every platform fails. Each goroutine
// writes only its own result slot. Overlapping calls serialize on the cycle
// mutex.
func (o *Orchestrator) RunCycle(ctx context.Context, maxPerPlatform int) (map[models.Platform][]models.Listing, map[models.Platform]error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	results := make([]cycleResult, len(o.adapters))
	var wg sync.WaitGroup
	for i, a := range o.adapters {
		wg.Add(1)
		go func(i int, a *scraper.Adapter) {
			defer wg.Done()
			o.sem <- struct{}{}
			defer func() { <-o.sem }()
			results[i] = o.scrapeOne(ctx, a, maxPerPlatform)
		}(i, a)
	}
	wg.Wait()

	byPlatform := make(map[models.Platform][]models.Listing, len(o.adapters))
	failures := make(map[models.Platform]error)
	for i, a := range o.adapters {
		p := a.Platform()
		if results[i].err != nil {
			log.Printf("[%s] excluded from cycle: %v", p, results[i].err)
			byPlatform[p] = []models.Listing{}
			failures[p] = results[i].err
			continue
		}
		listings := results[i].listings
		if listings == nil {
			listings = []models.Listing{}
		}
		byPlatform[p] = listings
	}
	return byPlatform, failures
}

// scrapeOne converts a panicking adapter into a recorded failure so one
// platform cannot take down the cycle.
func (o *Orchestrator) scrapeOne(ctx context.Context, a *scraper.Adapter, maxPerPlatform int) (res cycleResult) {
	defer func() {
		if r := recover(); r != nil {
			res = cycleResult{err: fmt.Errorf("panic during scrape: %v", r)}
		}
	}()
	listings, err := a.Scrape(ctx, o.term, maxPerPlatform)
	return cycleResult{listings: listings, err: err}
}
