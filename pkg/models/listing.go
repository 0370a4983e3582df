package models

import "time"

// Platform identifies one of the supported storefronts.
type Platform string

const (
	PlatformFairPrice  Platform = "fairprice"
	PlatformShopee     Platform = "shopee"
	PlatformLazada     Platform = "lazada"
	PlatformShengSiong Platform = "shengsiong"
	PlatformGiant      Platform = "giant"
)

// Platforms is the fixed iteration order for a scrape cycle. Consolidation
// ids depend on this order, so it must not change between cycles.
var Platforms = []Platform{
	PlatformFairPrice,
	PlatformShopee,
	PlatformLazada,
	PlatformShengSiong,
	PlatformGiant,
}

func ValidPlatform(s string) bool {
	for _, p := range Platforms {
		if string(p) == s {
			return true
		}
	}
	return false
}

// Category is a coarse product type derived from the listing name.
type Category string

const (
	CategoryUHT    Category = "uht"
	CategoryPowder Category = "powder"
	CategoryBottle Category = "bottle"
	CategoryOther  Category = "other"
)

// SaleKind labels how a promotion was detected. The values are wire-visible
// and must stay as-is.
type SaleKind string

const (
	SaleNone         SaleKind = "normal"
	SaleFlash        SaleKind = "flash_sale"
	SaleShopee       SaleKind = "shopee_sale"
	SaleLazada       SaleKind = "lazada_sale"
	SaleLimitedStock SaleKind = "limited_stock"
	SaleDiscount     SaleKind = "discount"
)

// Listing is one product offer scraped from one platform for one search.
type Listing struct {
	Name            string    `json:"name"`
	Category        Category  `json:"type"`
	Price           float64   `json:"price"`
	OriginalPrice   float64   `json:"original_price"`
	FlashSale       bool      `json:"flash_sale"`
	SaleType        SaleKind  `json:"flash_sale_type"`
	SaleEnd         string    `json:"flash_sale_end,omitempty"`
	DiscountPercent float64   `json:"discount_percent"`
	URL             string    `json:"url"`
	Platform        Platform  `json:"platform"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// PlatformOffer is a listing projected into comparison form.
type PlatformOffer struct {
	Platform        Platform `json:"platform"`
	Price           float64  `json:"price"`
	OriginalPrice   float64  `json:"originalPrice"`
	FlashSale       bool     `json:"flashSale"`
	SaleType        SaleKind `json:"flashSaleType"`
	SaleEnd         string   `json:"flashSaleEnd,omitempty"`
	DiscountPercent float64  `json:"discountPercent"`
	URL             string   `json:"url"`
}

// ComparisonEntry groups offers from different platforms believed to be the
// same product. Ids are assigned per cycle and are not stable across cycles.
type ComparisonEntry struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Category Category        `json:"type"`
	Prices   []PlatformOffer `json:"prices"`
}

// Snapshot is the complete result of one scrape cycle. It is published
// atomically and never mutated after publication.
type Snapshot struct {
	Entries     []ComparisonEntry
	ByPlatform  map[Platform][]Listing
	LastUpdated time.Time
}
