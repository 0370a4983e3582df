package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"milo-tracker/pkg/models"
)

func testConfig() PlatformConfig {
	return PlatformConfig{
		Platform: models.PlatformShengSiong,
		BaseURL:  "https://shengsiong.com.sg",
		Containers: []Rule{
			{Selector: `div.does-not-exist`}, // exercises the fallback hop
			{Selector: `div.product-item`},
		},
		Name: []Rule{
			{Selector: `h3.product-name`},
			{Selector: `h3`},
		},
		Price: []Rule{
			{Selector: `span.price`},
			{Selector: `[class*="price"]`},
		},
		OriginalPrice: []Rule{
			{Selector: `[class*="original"]`},
		},
		Link: []Rule{
			{Selector: `a`, Attr: "href"},
		},
	}
}

const extractFixture = `
<html><body>
<div class="product-item">
  <h3 class="product-name">Milo Powder Tin 1.5kg</h3>
  <span class="price">$12.90</span>
  <span class="original-tag">$15.90</span>
  <a href="/p/milo-tin">view</a>
</div>
<div class="product-item">
  <span class="price">$4.00</span>
</div>
<div class="product-item">
  <h3>Milo UHT Packet</h3>
  <span class="price">$2.40</span>
</div>
</body></html>
`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

func TestExtractListings(t *testing.T) {
	listings := ExtractListings(parseDoc(t, extractFixture), testConfig(), 10)

	if len(listings) != 2 {
		t.Fatalf("expected 2 listings (nameless container skipped), got %d", len(listings))
	}

	first := listings[0]
	if first.Name != "Milo Powder Tin 1.5kg" {
		t.Errorf("name = %q", first.Name)
	}
	if first.Category != models.CategoryPowder {
		t.Errorf("category = %q, want powder", first.Category)
	}
	if first.Price != 12.90 {
		t.Errorf("price = %v, want 12.90", first.Price)
	}
	if first.OriginalPrice != 15.90 {
		t.Errorf("original price = %v, want 15.90", first.OriginalPrice)
	}
	if first.URL != "https://shengsiong.com.sg/p/milo-tin" {
		t.Errorf("url = %q, want absolutized link", first.URL)
	}
	if first.DiscountPercent != 18.9 {
		t.Errorf("discount percent = %v, want 18.9", first.DiscountPercent)
	}
	if !first.FlashSale || first.SaleType != models.SaleDiscount {
		t.Errorf("expected discount promotion, got flashSale=%v kind=%q", first.FlashSale, first.SaleType)
	}

	second := listings[1]
	if second.Name != "Milo UHT Packet" {
		t.Errorf("fallback name rule failed, got %q", second.Name)
	}
	if second.OriginalPrice != second.Price {
		t.Errorf("original price should default to price, got %v vs %v", second.OriginalPrice, second.Price)
	}
	if second.FlashSale {
		t.Error("listing without a discount must not be a promotion")
	}
}

func TestExtractListingsTruncatesBeforeFiltering(t *testing.T) {
	// Slot 2 is the nameless container, so maxResults=2 yields one listing:
	// skipped containers still consume slots.
	listings := ExtractListings(parseDoc(t, extractFixture), testConfig(), 2)

	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].Name != "Milo Powder Tin 1.5kg" {
		t.Errorf("got %q", listings[0].Name)
	}
}

func TestExtractListingsNoContainers(t *testing.T) {
	listings := ExtractListings(parseDoc(t, `<html><body><p>nothing here</p></body></html>`), testConfig(), 10)
	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}

func TestExtractListingsPromotionInvariant(t *testing.T) {
	// Flash wording with an inverted price pair: the promotion claim must
	// not survive.
	cfg := testConfig()
	cfg.Promo = PromoRules{FlashPhrases: []string{"flash sale"}}

	html := `
<html><body>
<div class="product-item">
  <h3>Milo Powder Refill FLASH SALE</h3>
  <span class="price">$10.00</span>
  <span class="original-tag">$5.00</span>
</div>
</body></html>
`
	listings := ExtractListings(parseDoc(t, html), cfg, 10)
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}

	l := listings[0]
	if l.FlashSale {
		t.Error("promotion must be forced off when originalPrice < price")
	}
	if l.SaleType != models.SaleNone {
		t.Errorf("sale type = %q, want normal", l.SaleType)
	}
	if l.DiscountPercent != 0 {
		t.Errorf("discount percent = %v, want 0", l.DiscountPercent)
	}
}

func TestResolveFieldAttrFallsBackToText(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<div class="c"><a href="" title="Milo 3in1">link text</a></div>
<div class="c"><a href="">plain text</a></div>
</body></html>`)

	chain := []Rule{{Selector: "a", Attr: "title"}}

	containers := doc.Find("div.c")
	if got := resolveField(containers.Eq(0), chain); got != "Milo 3in1" {
		t.Errorf("attr value = %q, want Milo 3in1", got)
	}
	if got := resolveField(containers.Eq(1), chain); got != "plain text" {
		t.Errorf("text fallback = %q, want plain text", got)
	}
}
