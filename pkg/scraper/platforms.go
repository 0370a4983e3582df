package scraper

import (
	"time"

	"milo-tracker/pkg/models"
)

// Configs returns the per-platform configurations in cycle order. Selector
// chains go from the platform's own markup hooks to generic class patterns
// to a structural fallback.
func Configs() []PlatformConfig {
	return []PlatformConfig{
		{
			Platform:  models.PlatformFairPrice,
			BaseURL:   "https://www.fairprice.com.sg",
			SearchURL: "https://www.fairprice.com.sg/search?query=%s",
			Dynamic:   true,
			Settle:    3 * time.Second,
			Containers: []Rule{
				{Selector: `div[data-testid="product-container"]`},
				{Selector: `div.product-container`},
				{Selector: `div[class*="Product"]`},
			},
			Name: []Rule{
				{Selector: `div[data-testid="product-name"]`},
				{Selector: `[class*="product-name"]`},
				{Selector: `h3`},
			},
			Price: []Rule{
				{Selector: `span[data-testid="product-price"]`},
				{Selector: `[class*="price"]`},
			},
			OriginalPrice: []Rule{
				{Selector: `[class*="original"]`},
			},
			Link: []Rule{
				{Selector: `a`, Attr: "href"},
			},
			Promo: PromoRules{
				PlatformKind: models.SaleNone,
			},
		},
		{
			Platform:  models.PlatformShopee,
			BaseURL:   "https://shopee.sg",
			SearchURL: "https://shopee.sg/search?keyword=%s",
			Dynamic:   true,
			Settle:    5 * time.Second, // shopee needs extra time for scripts
			Containers: []Rule{
				{Selector: `div[data-sqe="item"]`},
				{Selector: `div.shopee-search-item-result__item`},
				{Selector: `div[class*="item-card"]`},
			},
			Name: []Rule{
				{Selector: `div[data-sqe="name"]`},
				{Selector: `div.shopee-item-card__text-name`},
				{Selector: `[class*="item-name"]`},
			},
			Price: []Rule{
				{Selector: `span[data-sqe="price"]`},
				{Selector: `span.shopee-item-card__current-price`},
				{Selector: `[class*="current-price"]`},
			},
			OriginalPrice: []Rule{
				{Selector: `span[class*="original-price"]`},
				{Selector: `del`},
				{Selector: `[class*="price-before-discount"]`},
			},
			Link: []Rule{
				{Selector: `a[data-sqe="link"]`, Attr: "href"},
				{Selector: `a`, Attr: "href"},
			},
			Promo: PromoRules{
				FlashPhrases: []string{
					"flash sale", "flash deal", "lightning deal", "limited time",
					"hourly sale", "shopee live sale", "limited offer",
				},
				PlatformKind: models.SaleShopee,
				FlashBadges:  []string{`[class*="flash"]`, `[class*="Flash"]`},
				SaleBadges:   []string{`[class*="shopee-sale"]`, `[class*="promotion"]`},
				TimerSelectors: []string{
					`[class*="countdown"]`, `[class*="timer"]`, `[class*="time-left"]`,
				},
				MinDiscountPct: 20,
			},
		},
		{
			Platform:  models.PlatformLazada,
			BaseURL:   "https://www.lazada.sg",
			SearchURL: "https://www.lazada.sg/catalog/?q=%s",
			Dynamic:   true,
			Settle:    5 * time.Second,
			Containers: []Rule{
				{Selector: `div[data-qa-locator="product-item"]`},
				{Selector: `div.Bm3ON`},
				{Selector: `div[class*="product"]`},
			},
			Name: []Rule{
				{Selector: `div[data-qa-locator="product-name"]`},
				{Selector: `div.RfADt`},
				{Selector: `[title]`, Attr: "title"},
			},
			Price: []Rule{
				{Selector: `span[data-qa-locator="product-price"]`},
				{Selector: `span.ooOxS`},
				{Selector: `[class*="price"]`},
			},
			OriginalPrice: []Rule{
				{Selector: `del[class*="price"]`},
				{Selector: `[class*="original"]`},
				{Selector: `del`},
			},
			Link: []Rule{
				{Selector: `a`, Attr: "href"},
			},
			Promo: PromoRules{
				FlashPhrases: []string{
					"lazflash", "flash sale", "flash deal", "lightning deal",
				},
				SalePhrases: []string{
					"limited time", "limited quantity", "ending soon", "lazada sale",
				},
				PlatformKind: models.SaleLazada,
				FlashBadges:  []string{`[class*="flash"]`, `[class*="Flash"]`, `[class*="LazFlash"]`},
				SaleTagSelectors: []string{
					`[class*="sale-tag"]`, `[class*="promotion"]`, `[class*="badge"]`,
				},
				SaleTagWords: []string{"flash", "limited", "ending"},
				TimerSelectors: []string{
					`[class*="countdown"]`, `[class*="timer"]`, `[class*="time-left"]`,
				},
				StockSelectors: []string{`[class*="stock"]`, `[class*="quantity"]`},
				MinDiscountPct: 15,
			},
		},
		{
			Platform:  models.PlatformShengSiong,
			BaseURL:   "https://shengsiong.com.sg",
			SearchURL: "https://shengsiong.com.sg/search?q=%s",
			Containers: []Rule{
				{Selector: `div.product-item`},
				{Selector: `div[class*="product-card"]`},
				{Selector: `div[class*="Product"]`},
			},
			Name: []Rule{
				{Selector: `h3.product-name`},
				{Selector: `div.product-title`},
				{Selector: `[class*="name"]`},
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
			Promo: PromoRules{
				PlatformKind: models.SaleNone,
			},
		},
		{
			Platform:  models.PlatformGiant,
			BaseURL:   "https://giant.sg",
			SearchURL: "https://giant.sg/search?q=%s",
			Containers: []Rule{
				{Selector: `div.product-tile`},
				{Selector: `div[class*="product-item"]`},
				{Selector: `div[class*="Product"]`},
			},
			Name: []Rule{
				{Selector: `h3.product-name`},
				{Selector: `div.product-title`},
				{Selector: `[class*="name"]`},
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
			Promo: PromoRules{
				PlatformKind: models.SaleNone,
			},
		},
	}
}

// ConfigFor looks up the configuration for one platform.
func ConfigFor(p models.Platform) (PlatformConfig, bool) {
	for _, cfg := range Configs() {
		if cfg.Platform == p {
			return cfg, true
		}
	}
	return PlatformConfig{}, false
}
