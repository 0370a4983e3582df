package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	scalargo "github.com/bdpiprava/scalar-go"

	"milo-tracker/pkg/api"
	"milo-tracker/pkg/cache"
	"milo-tracker/pkg/consolidate"
	"milo-tracker/pkg/logger"
	"milo-tracker/pkg/models"
	"milo-tracker/pkg/orchestrator"
	"milo-tracker/pkg/scraper"
)

var (
	productCache   *cache.Cache
	orch           *orchestrator.Orchestrator
	engine         *consolidate.Engine
	maxPerPlatform = 10

	// Serializes cache refreshes so concurrent stale reads trigger one cycle.
	refreshMu sync.Mutex
)

func main() {
	port := envString("PORT", "8080")
	searchTerm := envString("SEARCH_TERM", "milo")
	ttl := time.Duration(envInt("CACHE_TTL_MINUTES", 60)) * time.Minute
	interval := time.Duration(envInt("SCRAPE_INTERVAL_MINUTES", 60)) * time.Minute
	maxPerPlatform = envInt("MAX_PRODUCTS_PER_PLATFORM", 10)

	productCache = cache.New(ttl)
	engine = consolidate.New()
	orch = orchestrator.New(scraper.DefaultAdapters(), searchTerm)

	log.Printf("Tracking %q across %d platforms, cache TTL %s, re-scrape every %s",
		searchTerm, len(models.Platforms), ttl, interval)

	go func() {
		log.Println("Running initial scrape...")
		runCycle(context.Background())
	}()
	go scheduleScrapes(interval)

	http.HandleFunc("/", rootHandler)

	ip := GetOutboundIP()
	if ip != nil {
		fmt.Printf("Local Network URL: http://%s:%s\n", ip.String(), port)
	} else {
		fmt.Println("Could not determine local IP address.")
	}
	fmt.Printf("Access URL: http://localhost:%s\n", port)
	fmt.Printf("API Docs: http://localhost:%s/\n", port)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           nil,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Fatal(server.ListenAndServe())
}

func envString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func GetOutboundIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		addrs, _ := net.InterfaceAddrs()
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					return ipnet.IP
				}
			}
		}
		return nil
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)

	return localAddr.IP
}

// runCycle scrapes every platform, consolidates, and publishes a new
// snapshot. It always publishes, even when every platform failed.
func runCycle(ctx context.Context) *models.Snapshot {
	byPlatform, failures := orch.RunCycle(ctx, maxPerPlatform)
	entries := engine.Consolidate(models.Platforms, byPlatform)

	snap := &models.Snapshot{
		Entries:     entries,
		ByPlatform:  byPlatform,
		LastUpdated: time.Now(),
	}
	productCache.Replace(snap)

	total := 0
	for _, listings := range byPlatform {
		total += len(listings)
	}
	if len(failures) == len(models.Platforms) {
		log.Println("All platforms failed this cycle; published an empty snapshot")
	} else {
		log.Printf("Cycle complete: %d listings, %d entries, %d platform failures",
			total, len(entries), len(failures))
	}
	return snap
}

// ensureFresh returns the cached snapshot when it is within TTL, otherwise
// runs a cycle. Concurrent stale readers serialize and re-check after the
// lock so only one of them scrapes. The cycle runs on a context detached
// from the request: a client disconnect must not cancel in-flight fetches
// and publish an empty snapshot over usable data.
func ensureFresh(ctx context.Context) (snap *models.Snapshot, fromCache bool) {
	if s, ok := productCache.Get(); ok && productCache.IsFresh() {
		if age, ok := productCache.Age(); ok {
			logger.Dedup("Cache hit (age %s)", age.Round(time.Second))
		}
		return s, true
	}

	refreshMu.Lock()
	defer refreshMu.Unlock()
	if s, ok := productCache.Get(); ok && productCache.IsFresh() {
		return s, true
	}
	return runCycle(context.WithoutCancel(ctx)), false
}

func forceRefresh(ctx context.Context) *models.Snapshot {
	refreshMu.Lock()
	defer refreshMu.Unlock()
	return runCycle(context.WithoutCancel(ctx))
}

func scheduleScrapes(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		log.Println("Scheduled scrape starting...")
		forceRefresh(context.Background())
	}
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		apiHandler(w, r)
		return
	}

	// Serve Scalar docs on root path
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir("./"),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("Milo Price Tracker API"),
		),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func apiHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/api/products":
		requireGet(w, r, handleProducts)
	case strings.HasPrefix(path, "/api/products/"):
		requireGet(w, r, handlePlatformProducts)
	case path == "/api/scrape":
		if r.Method != http.MethodPost {
			api.WriteBadRequest(w, "Method not allowed. Use POST to trigger a scrape.", r.URL.Path)
			return
		}
		handleScrape(w, r)
	case path == "/api/best-deals":
		requireGet(w, r, handleBestDeals)
	case path == "/api/flash-sales":
		requireGet(w, r, handleFlashSales)
	case path == "/api/status":
		requireGet(w, r, handleStatus)
	default:
		api.WriteNotFound(w, "Unknown endpoint", r.URL.Path)
	}
}

func requireGet(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.Method != http.MethodGet {
		api.WriteBadRequest(w, "Method not allowed. Use GET.", r.URL.Path)
		return
	}
	next(w, r)
}

func handleProducts(w http.ResponseWriter, r *http.Request) {
	snap, fromCache := ensureFresh(r.Context())
	source := "fresh_scrape"
	if fromCache {
		source = "cache"
	}

	writeJSON(w, r, map[string]any{
		"products":    snap.Entries,
		"lastUpdated": snap.LastUpdated.Format(time.RFC3339),
		"source":      source,
		"platforms":   platformNames(snap),
	})
}

func handlePlatformProducts(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/products/"), "/")
	if !models.ValidPlatform(name) {
		api.WriteBadRequest(w,
			"Invalid platform. Choose from: fairprice, shopee, lazada, shengsiong, giant",
			r.URL.Path)
		return
	}
	platform := models.Platform(name)

	if snap, ok := productCache.Get(); ok {
		writeJSON(w, r, map[string]any{
			"platform":    platform,
			"products":    snap.ByPlatform[platform],
			"lastUpdated": snap.LastUpdated.Format(time.RFC3339),
		})
		return
	}

	// No snapshot yet: scrape just this platform.
	adapter, ok := orch.AdapterFor(platform)
	if !ok {
		api.WriteInternalServerError(w, fmt.Errorf("no adapter for platform %s", platform), r.URL.Path)
		return
	}

	listings, err := adapter.Scrape(r.Context(), orch.Term(), maxPerPlatform)
	if err != nil {
		log.Printf("Error scraping %s: %v", platform, err)
		if strings.Contains(err.Error(), "context deadline exceeded") || strings.Contains(err.Error(), "timeout") {
			api.WriteError(w, http.StatusGatewayTimeout, "Gateway Timeout", "Upstream storefront timed out: "+err.Error(), r.URL.Path)
			return
		}
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}

	writeJSON(w, r, map[string]any{
		"platform":    platform,
		"products":    listings,
		"count":       len(listings),
		"lastUpdated": time.Now().Format(time.RFC3339),
	})
}

func handleScrape(w http.ResponseWriter, r *http.Request) {
	snap := forceRefresh(r.Context())

	writeJSON(w, r, map[string]any{
		"status":           "success",
		"products_scraped": len(snap.Entries),
		"platforms":        platformNames(snap),
		"timestamp":        snap.LastUpdated.Format(time.RFC3339),
	})
}

type bestDeal struct {
	Product        string          `json:"product"`
	BestPlatform   models.Platform `json:"best_platform"`
	BestPrice      float64         `json:"best_price"`
	WorstPlatform  models.Platform `json:"worst_platform"`
	WorstPrice     float64         `json:"worst_price"`
	Savings        float64         `json:"savings"`
	SavingsPercent float64         `json:"savings_percent"`
}

func handleBestDeals(w http.ResponseWriter, r *http.Request) {
	snap, _ := ensureFresh(r.Context())

	deals := make([]bestDeal, 0)
	total := 0.0
	for _, entry := range snap.Entries {
		if len(entry.Prices) < 2 {
			continue
		}
		offers := append([]models.PlatformOffer(nil), entry.Prices...)
		sort.SliceStable(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })

		best := offers[0]
		worst := offers[len(offers)-1]
		savings := worst.Price - best.Price
		if savings <= 0 {
			continue
		}

		deals = append(deals, bestDeal{
			Product:        entry.Name,
			BestPlatform:   best.Platform,
			BestPrice:      best.Price,
			WorstPlatform:  worst.Platform,
			WorstPrice:     worst.Price,
			Savings:        round2(savings),
			SavingsPercent: round1(savings / worst.Price * 100),
		})
		total += round2(savings)
	}

	sort.SliceStable(deals, func(i, j int) bool { return deals[i].Savings > deals[j].Savings })
	top := deals
	if len(top) > 10 {
		top = top[:10]
	}

	writeJSON(w, r, map[string]any{
		"best_deals":              top,
		"total_potential_savings": round2(total),
	})
}

type flashPlatform struct {
	Platform    models.Platform `json:"platform"`
	Price       float64         `json:"price"`
	IsFlashSale bool            `json:"is_flash_sale"`
	SaleType    models.SaleKind `json:"flash_sale_type"`
}

type flashSaleEntry struct {
	Product         string          `json:"product"`
	Category        models.Category `json:"type"`
	Platform        models.Platform `json:"platform"`
	Price           float64         `json:"price"`
	OriginalPrice   float64         `json:"original_price"`
	DiscountPercent float64         `json:"discount_percent"`
	SaleType        models.SaleKind `json:"flash_sale_type"`
	SaleEnd         *string         `json:"flash_sale_end"`
	URL             string          `json:"url"`
	AllPlatforms    []flashPlatform `json:"all_platforms"`
}

func handleFlashSales(w http.ResponseWriter, r *http.Request) {
	snap, _ := ensureFresh(r.Context())

	sales := make([]flashSaleEntry, 0)
	for _, entry := range snap.Entries {
		promoted := make([]models.PlatformOffer, 0, len(entry.Prices))
		for _, o := range entry.Prices {
			if o.FlashSale {
				promoted = append(promoted, o)
			}
		}
		if len(promoted) == 0 {
			continue
		}
		sort.SliceStable(promoted, func(i, j int) bool { return promoted[i].Price < promoted[j].Price })
		best := promoted[0]

		var endsAt *string
		if best.SaleEnd != "" {
			endsAt = &best.SaleEnd
		}

		all := make([]flashPlatform, 0, len(entry.Prices))
		for _, o := range entry.Prices {
			all = append(all, flashPlatform{
				Platform:    o.Platform,
				Price:       o.Price,
				IsFlashSale: o.FlashSale,
				SaleType:    o.SaleType,
			})
		}

		sales = append(sales, flashSaleEntry{
			Product:         entry.Name,
			Category:        entry.Category,
			Platform:        best.Platform,
			Price:           best.Price,
			OriginalPrice:   best.OriginalPrice,
			DiscountPercent: best.DiscountPercent,
			SaleType:        best.SaleType,
			SaleEnd:         endsAt,
			URL:             best.URL,
			AllPlatforms:    all,
		})
	}

	sort.SliceStable(sales, func(i, j int) bool { return sales[i].DiscountPercent > sales[j].DiscountPercent })

	platforms := make([]models.Platform, 0)
	seen := make(map[models.Platform]bool)
	for _, s := range sales {
		if !seen[s.Platform] {
			seen[s.Platform] = true
			platforms = append(platforms, s.Platform)
		}
	}

	writeJSON(w, r, map[string]any{
		"flash_sales":                sales,
		"total_flash_sales":          len(sales),
		"platforms_with_flash_sales": platforms,
	})
}

type statusResponse struct {
	Status          string                  `json:"status"`
	CacheStatus     string                  `json:"cache_status"`
	LastUpdated     *string                 `json:"last_updated"`
	CachedProducts  int                     `json:"cached_products"`
	CacheAgeSeconds *int                    `json:"cache_age_seconds"`
	Platforms       map[models.Platform]int `json:"platforms"`
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:      "running",
		CacheStatus: "empty",
		Platforms:   make(map[models.Platform]int),
	}

	if snap, ok := productCache.Get(); ok {
		resp.CacheStatus = "active"
		updated := snap.LastUpdated.Format(time.RFC3339)
		resp.LastUpdated = &updated
		resp.CachedProducts = len(snap.Entries)
		if age, ok := productCache.Age(); ok {
			secs := int(age.Seconds())
			resp.CacheAgeSeconds = &secs
		}
		for platform, listings := range snap.ByPlatform {
			resp.Platforms[platform] = len(listings)
		}
	}

	writeJSON(w, r, resp)
}

// platformNames lists the platforms present in the snapshot, in cycle order.
func platformNames(snap *models.Snapshot) []models.Platform {
	names := make([]models.Platform, 0, len(snap.ByPlatform))
	for _, p := range models.Platforms {
		if _, ok := snap.ByPlatform[p]; ok {
			names = append(names, p)
		}
	}
	return names
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
		api.WriteInternalServerError(w, fmt.Errorf("failed to encode response"), r.URL.Path)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
