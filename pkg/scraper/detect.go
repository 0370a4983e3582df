package scraper

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"milo-tracker/pkg/models"
)

// PromotionInfo is the result of running the detection chain over one
// listing fragment.
type PromotionInfo struct {
	IsPromotion bool
	Kind        models.SaleKind
	EndsAt      string
}

var scarcityWords = []string{"left", "remaining", "limited"}

// DetectPromotion evaluates the promotion signals in precedence order:
// phrase match, badge, sale-tag wording, countdown timer, stock scarcity,
// then the numeric discount fallback. The first applicable signal wins the kind; later
// signals may still upgrade IsPromotion without reassigning it.
func DetectPromotion(fragment *goquery.Selection, price, originalPrice float64, rules PromoRules) PromotionInfo {
	info := PromotionInfo{Kind: models.SaleNone}
	text := strings.ToLower(fragment.Text())

	for _, phrase := range rules.FlashPhrases {
		if strings.Contains(text, phrase) {
			info.IsPromotion = true
			info.Kind = models.SaleFlash
			break
		}
	}
	if !info.IsPromotion {
		for _, phrase := range rules.SalePhrases {
			if strings.Contains(text, phrase) {
				info.IsPromotion = true
				info.Kind = rules.PlatformKind
				break
			}
		}
	}

	if matchesAny(fragment, rules.FlashBadges) {
		info.IsPromotion = true
		if info.Kind == models.SaleNone {
			info.Kind = models.SaleFlash
		}
	}
	if info.Kind == models.SaleNone && matchesAny(fragment, rules.SaleBadges) {
		info.IsPromotion = true
		info.Kind = rules.PlatformKind
	}

	// Sale tags carry bare words ("FLASH", "Limited!") that the phrase lists
	// are too specific to catch. Only consulted when nothing fired yet.
	if !info.IsPromotion && hasWording(fragment, rules.SaleTagSelectors, rules.SaleTagWords) {
		info.IsPromotion = true
		info.Kind = models.SaleFlash
	}

	if timer := firstMatch(fragment, rules.TimerSelectors); timer != nil {
		info.IsPromotion = true
		if info.Kind == models.SaleNone {
			info.Kind = models.SaleFlash
		}
		if t := strings.TrimSpace(timer.Text()); t != "" {
			info.EndsAt = t
		} else {
			info.EndsAt = "Soon"
		}
	}

	if !info.IsPromotion && hasWording(fragment, rules.StockSelectors, scarcityWords) {
		info.IsPromotion = true
		info.Kind = models.SaleLimitedStock
	}

	if !info.IsPromotion && originalPrice > price && price > 0 {
		discount := (originalPrice - price) / originalPrice * 100
		if discount >= rules.MinDiscountPct {
			info.IsPromotion = true
			info.Kind = models.SaleDiscount
		}
	}

	return info
}

// DiscountPercent is computed independently of detection, rounded to one
// decimal. Requires originalPrice > price > 0, otherwise 0.
func DiscountPercent(price, originalPrice float64) float64 {
	if originalPrice > price && price > 0 {
		return math.Round((originalPrice-price)/originalPrice*1000) / 10
	}
	return 0
}

func matchesAny(fragment *goquery.Selection, selectors []string) bool {
	return firstMatch(fragment, selectors) != nil
}

func firstMatch(fragment *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if s := fragment.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// hasWording reports whether any element matched by the selectors has text
// containing one of the words.
func hasWording(fragment *goquery.Selection, selectors, words []string) bool {
	found := false
	for _, sel := range selectors {
		fragment.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.ToLower(s.Text())
			for _, w := range words {
				if strings.Contains(text, w) {
					found = true
					return false
				}
			}
			return true
		})
		if found {
			break
		}
	}
	return found
}
