package scraper

import (
	"time"

	"milo-tracker/pkg/models"
)

// Rule is one locator in a fallback chain. Selector is a CSS selector; if
// Attr is set the value is read from that attribute, falling back to the
// element text when the attribute is empty.
type Rule struct {
	Selector string
	Attr     string
}

// PromoRules drives promotion detection for one platform. Empty lists
// disable the corresponding signal; MinDiscountPct of 0 means any positive
// discount counts.
type PromoRules struct {
	FlashPhrases []string
	SalePhrases  []string
	PlatformKind models.SaleKind
	FlashBadges  []string
	SaleBadges   []string

	// Tag elements whose text contains one of the bare words, e.g. a badge
	// reading just "FLASH" or "Limited!".
	SaleTagSelectors []string
	SaleTagWords     []string

	TimerSelectors []string
	StockSelectors []string
	MinDiscountPct float64
}

// PlatformConfig holds everything platform-specific: URLs, locator fallback
// chains for each field, and promotion rules.
type PlatformConfig struct {
	Platform  models.Platform
	BaseURL   string
	SearchURL string // fmt template, %s is the query-escaped search term
	Dynamic   bool   // result grid needs script execution to render
	Settle    time.Duration

	Containers    []Rule
	Name          []Rule
	Price         []Rule
	OriginalPrice []Rule
	Link          []Rule

	Promo PromoRules
}
