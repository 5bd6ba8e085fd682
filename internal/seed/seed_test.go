package seed

import (
	"testing"
	"time"

	"github.com/fasterr/marketplace/internal/domain"
)

func TestDatasetIsDeterministic(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	a := Dataset(100, now)
	b := Dataset(100, now)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Title != b[i].Title || a[i].Price != b[i].Price || a[i].CreatedAt != b[i].CreatedAt {
			t.Fatalf("product %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDatasetIncludesStaticListings(t *testing.T) {
	products := Dataset(10, time.Now())
	if len(products) != 14 {
		t.Fatalf("expected 4 static + 10 generated, got %d", len(products))
	}
	if products[0].ID != "1" || products[0].Title != "Vintage Film Camera" {
		t.Fatalf("static listing missing: %+v", products[0])
	}
	if products[3].Status != domain.StatusSold {
		t.Fatalf("the leather jacket ships sold: %+v", products[3])
	}
}

func TestGeneratedProductsAreValid(t *testing.T) {
	products := Dataset(DefaultCount, time.Now())
	for _, p := range products {
		if err := p.Validate(); err != nil {
			t.Fatalf("seed product %s invalid: %v", p.ID, err)
		}
		if p.Price < 500 {
			t.Fatalf("seed price below floor: %+v", p)
		}
	}
}

func TestGeneratedIncludesSoldListings(t *testing.T) {
	products := Dataset(DefaultCount, time.Now())
	sold := 0
	for _, p := range products {
		if p.Status == domain.StatusSold {
			sold++
		}
	}
	// Roughly 10% of generated listings are sold; fixed seed keeps this stable.
	if sold < 5 {
		t.Fatalf("expected some sold seed listings, got %d", sold)
	}
}
