package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"milo-tracker/pkg/models"
)

// ExtractListings pulls listings out of a rendered search-results page.
// The container candidate list is sliced to maxResults before per-container
// filtering, so a container skipped for a missing name still consumes a slot.
func ExtractListings(doc *goquery.Document, cfg PlatformConfig, maxResults int) []models.Listing {
	containers := findContainers(doc, cfg.Containers)
	if containers == nil {
		return nil
	}
	if maxResults >= 0 && containers.Length() > maxResults {
		containers = containers.Slice(0, maxResults)
	}

	listings := make([]models.Listing, 0, containers.Length())
	now := time.Now()

	containers.Each(func(_ int, c *goquery.Selection) {
		name := collapseSpace(resolveField(c, cfg.Name))
		if name == "" {
			return
		}

		price := ParsePrice(resolveField(c, cfg.Price))
		originalPrice := ParsePrice(resolveField(c, cfg.OriginalPrice))
		if originalPrice <= 0 {
			originalPrice = price
		}

		promo := DetectPromotion(c, price, originalPrice, cfg.Promo)

		l := models.Listing{
			Name:            name,
			Category:        Categorize(name),
			Price:           price,
			OriginalPrice:   originalPrice,
			FlashSale:       promo.IsPromotion,
			SaleType:        promo.Kind,
			SaleEnd:         promo.EndsAt,
			DiscountPercent: DiscountPercent(price, originalPrice),
			URL:             resolveLink(c, cfg),
			Platform:        cfg.Platform,
			ScrapedAt:       now,
		}

		// A promotion claim does not survive an inverted price pair.
		if l.FlashSale && l.Price > 0 && l.OriginalPrice > 0 && l.OriginalPrice < l.Price {
			l.FlashSale = false
			l.SaleType = models.SaleNone
			l.SaleEnd = ""
		}

		listings = append(listings, l)
	})

	return listings
}

// findContainers tries the container rules in order and returns the first
// non-empty match set.
func findContainers(doc *goquery.Document, chain []Rule) *goquery.Selection {
	for _, r := range chain {
		if s := doc.Find(r.Selector); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// resolveField walks a fallback chain; the first rule yielding a non-empty
// value wins.
func resolveField(c *goquery.Selection, chain []Rule) string {
	for _, r := range chain {
		sel := c.Find(r.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		if r.Attr != "" {
			if v, ok := sel.Attr(r.Attr); ok {
				if v = strings.TrimSpace(v); v != "" {
					return v
				}
			}
		}
		if t := strings.TrimSpace(sel.Text()); t != "" {
			return t
		}
	}
	return ""
}

func resolveLink(c *goquery.Selection, cfg PlatformConfig) string {
	href := resolveField(c, cfg.Link)
	if href == "" {
		return ""
	}
	if !strings.HasPrefix(href, "http") {
		return cfg.BaseURL + href
	}
	return href
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
