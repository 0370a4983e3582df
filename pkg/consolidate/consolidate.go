// Package consolidate folds per-platform listings into cross-platform
// comparison entries.
package consolidate

import (
	"strings"

	"milo-tracker/pkg/models"
)

// KeyFunc resolves a listing to a grouping key. Listings sharing a key are
// treated as the same product.
type KeyFunc func(models.Listing) string

const defaultKeyLength = 20

// DefaultKey is a deliberately weak matcher: the first 20 characters of the
// raw name, lowercased, spaces removed. Truncation happens before
// normalization, so spaces count toward the 20.
// TODO: swap in fuzzy matching once pack-size variants need separating.
func DefaultKey(l models.Listing) string {
	name := []rune(l.Name)
	if len(name) > defaultKeyLength {
		name = name[:defaultKeyLength]
	}
	return strings.ReplaceAll(strings.ToLower(string(name)), " ", "")
}

// Engine groups listings by Key. The zero value uses DefaultKey.
type Engine struct {
	Key KeyFunc
}

func New() *Engine {
	return &Engine{Key: DefaultKey}
}

// Consolidate rebuilds the comparison set from scratch. Platforms are
// iterated in the given order and listings in scraped order, so ids are
// deterministic for a fixed input; they restart from 1 every cycle and must
// not be treated as durable identifiers. A platform contributes at most one
// offer per entry; later same-platform listings under the same key are
// dropped.
func (e *Engine) Consolidate(order []models.Platform, byPlatform map[models.Platform][]models.Listing) []models.ComparisonEntry {
	key := e.Key
	if key == nil {
		key = DefaultKey
	}

	entries := make([]models.ComparisonEntry, 0)
	index := make(map[string]int)

	for _, platform := range order {
		for _, l := range byPlatform[platform] {
			k := key(l)
			i, ok := index[k]
			if !ok {
				entries = append(entries, models.ComparisonEntry{
					ID:       len(entries) + 1,
					Name:     l.Name,
					Category: l.Category,
				})
				i = len(entries) - 1
				index[k] = i
			}
			if hasPlatform(entries[i].Prices, l.Platform) {
				continue
			}
			entries[i].Prices = append(entries[i].Prices, offerOf(l))
		}
	}

	return entries
}

func hasPlatform(offers []models.PlatformOffer, p models.Platform) bool {
	for _, o := range offers {
		if o.Platform == p {
			return true
		}
	}
	return false
}

func offerOf(l models.Listing) models.PlatformOffer {
	return models.PlatformOffer{
		Platform:        l.Platform,
		Price:           l.Price,
		OriginalPrice:   l.OriginalPrice,
		FlashSale:       l.FlashSale,
		SaleType:        l.SaleType,
		SaleEnd:         l.SaleEnd,
		DiscountPercent: l.DiscountPercent,
		URL:             l.URL,
	}
}
