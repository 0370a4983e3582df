package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"milo-tracker/pkg/models"
)

var (
	// "S" covers the S$ currency prefix.
	priceCleaner = strings.NewReplacer(",", "", "$", "", "S", "")
	priceRe      = regexp.MustCompile(`\d+\.?\d*`)
)

// ParsePrice extracts the first decimal-like substring from a price label.
// Malformed or empty input yields 0, never an error.
func ParsePrice(text string) float64 {
	m := priceRe.FindString(priceCleaner.Replace(text))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// Keyword sets are checked in this order; a name matching several sets gets
// the first category. The ordering is contractual.
var (
	uhtKeywords    = []string{"uht", "packet", "200ml", "tetra"}
	powderKeywords = []string{"powder", "tin", "refill", "kg", "sachet", "gao"}
	bottleKeywords = []string{"bottle", "1l", "1.5l", "pet", "drink"}
)

func Categorize(name string) models.Category {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, uhtKeywords):
		return models.CategoryUHT
	case containsAny(lower, powderKeywords):
		return models.CategoryPowder
	case containsAny(lower, bottleKeywords):
		return models.CategoryBottle
	default:
		return models.CategoryOther
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
