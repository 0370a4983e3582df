package consolidate

import (
	"reflect"
	"testing"

	"milo-tracker/pkg/models"
)

func listing(name string, platform models.Platform, price float64) models.Listing {
	return models.Listing{
		Name:          name,
		Category:      models.CategoryPowder,
		Price:         price,
		OriginalPrice: price,
		SaleType:      models.SaleNone,
		Platform:      platform,
	}
}

func TestDefaultKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Milo 3in1 Instant Sachet 20x33g", "milo3in1instantsa"},
		{"Milo 3in1 Instant Sachet Bundle", "milo3in1instantsa"},
		{"Milo Tin", "milotin"},
		{"MILO Tin", "milotin"},
	}

	for _, tt := range tests {
		if got := DefaultKey(listing(tt.name, models.PlatformGiant, 1)); got != tt.want {
			t.Errorf("DefaultKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestConsolidateGroupsByPrefix(t *testing.T) {
	byPlatform := map[models.Platform][]models.Listing{
		models.PlatformFairPrice: {listing("Milo 3in1 Instant Sachet 20x33g", models.PlatformFairPrice, 10.50)},
		models.PlatformShopee:    {listing("Milo 3in1 Instant Sachet Bundle", models.PlatformShopee, 9.90)},
		models.PlatformGiant:     {listing("Milo UHT Packet 200ml", models.PlatformGiant, 0.85)},
	}

	entries := New().Consolidate(models.Platforms, byPlatform)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ID != 1 {
		t.Errorf("first entry id = %d, want 1", first.ID)
	}
	if first.Name != "Milo 3in1 Instant Sachet 20x33g" {
		t.Errorf("entry name = %q, want the first listing's name", first.Name)
	}
	if len(first.Prices) != 2 {
		t.Fatalf("expected 2 offers in the sachet entry, got %d", len(first.Prices))
	}
	if first.Prices[0].Platform != models.PlatformFairPrice || first.Prices[1].Platform != models.PlatformShopee {
		t.Errorf("offers out of cycle order: %v, %v", first.Prices[0].Platform, first.Prices[1].Platform)
	}

	if entries[1].ID != 2 || entries[1].Name != "Milo UHT Packet 200ml" {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestConsolidatePlatformAppearsOncePerEntry(t *testing.T) {
	byPlatform := map[models.Platform][]models.Listing{
		models.PlatformShopee: {
			listing("Milo Tin 1.5kg", models.PlatformShopee, 12.90),
			listing("Milo Tin 1.5kg Promo", models.PlatformShopee, 11.90),
		},
	}

	entries := New().Consolidate(models.Platforms, byPlatform)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if len(entries[0].Prices) != 1 {
		t.Fatalf("expected 1 offer (platform deduped), got %d", len(entries[0].Prices))
	}
	if entries[0].Prices[0].Price != 12.90 {
		t.Errorf("kept price = %v, want the first listing's 12.90", entries[0].Prices[0].Price)
	}
}

func TestConsolidateDeterministic(t *testing.T) {
	byPlatform := map[models.Platform][]models.Listing{
		models.PlatformFairPrice:  {listing("Milo Tin", models.PlatformFairPrice, 10)},
		models.PlatformShopee:     {listing("Milo Tin", models.PlatformShopee, 9), listing("Milo Bottle 1.5L", models.PlatformShopee, 3)},
		models.PlatformLazada:     {listing("Milo Bottle 1.5L", models.PlatformLazada, 2.8)},
		models.PlatformShengSiong: {},
		models.PlatformGiant:      {listing("Milo Tin", models.PlatformGiant, 9.5)},
	}

	engine := New()
	a := engine.Consolidate(models.Platforms, byPlatform)
	b := engine.Consolidate(models.Platforms, byPlatform)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("same input must yield identical entries and ids:\n%+v\nvs\n%+v", a, b)
	}
	if a[0].ID != 1 || a[1].ID != 2 {
		t.Errorf("ids must restart from 1 in first-seen order, got %d, %d", a[0].ID, a[1].ID)
	}
}

func TestConsolidateEmptyInput(t *testing.T) {
	entries := New().Consolidate(models.Platforms, map[models.Platform][]models.Listing{})
	if entries == nil {
		t.Fatal("entries must be an empty slice, not nil")
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestConsolidateCustomKey(t *testing.T) {
	// Swapping the matcher must not touch the rest of the pipeline.
	engine := &Engine{Key: func(l models.Listing) string { return string(l.Category) }}

	byPlatform := map[models.Platform][]models.Listing{
		models.PlatformFairPrice: {listing("Milo Tin A", models.PlatformFairPrice, 10)},
		models.PlatformShopee:    {listing("Completely Different Name", models.PlatformShopee, 9)},
	}

	entries := engine.Consolidate(models.Platforms, byPlatform)
	if len(entries) != 1 {
		t.Fatalf("custom key should fold both listings into one entry, got %d", len(entries))
	}
	if len(entries[0].Prices) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(entries[0].Prices))
	}
}
