package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fasterr/marketplace/internal/domain"
)

type stubDescGen struct {
	out   string
	calls int
}

func (s *stubDescGen) GenerateDescription(ctx context.Context, title, category, features string) string {
	s.calls++
	return s.out
}

func TestCreateListingFillsInvariantFields(t *testing.T) {
	catalog := &memCatalog{}
	svc := NewCatalogService(catalog, &memFavorites{}, nil, nil)
	actor := domain.User{ID: "u1", Name: "Alice"}

	p, err := svc.CreateListing(context.Background(), actor, ListingInput{
		Title:       "Mountain Bike",
		Price:       15000,
		Description: "well maintained",
		Category:    domain.CategoryBikes,
		Condition:   domain.ConditionGood,
		Images:      []string{"https://img/1.jpg", "https://img/2.jpg"},
		Location:    "Pune",
	})
	if err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	if p.ID == "" || p.CreatedAt == 0 {
		t.Fatalf("id and createdAt must be assigned: %+v", p)
	}
	if p.Status != domain.StatusActive {
		t.Fatalf("new listings start active, got %s", p.Status)
	}
	if p.Image != p.Images[0] {
		t.Fatalf("primary image must be the first of images")
	}
	if p.SellerID != "u1" || p.SellerName != "Alice" {
		t.Fatalf("seller snapshot wrong: %+v", p)
	}

	stored, err := catalog.GetByID(p.ID)
	if err != nil {
		t.Fatalf("listing not persisted: %v", err)
	}
	if stored.Title != "Mountain Bike" {
		t.Fatalf("stored listing mismatch: %+v", stored)
	}
}

func TestCreateListingGeneratesMissingDescription(t *testing.T) {
	gen := &stubDescGen{out: "A sturdy bike in great shape."}
	svc := NewCatalogService(&memCatalog{}, &memFavorites{}, gen, nil)
	actor := domain.User{ID: "u1", Name: "Alice"}

	p, err := svc.CreateListing(context.Background(), actor, ListingInput{
		Title:     "Mountain Bike",
		Price:     15000,
		Features:  "21 gears, disc brakes",
		Category:  domain.CategoryBikes,
		Condition: domain.ConditionGood,
		Images:    []string{"https://img/1.jpg"},
	})
	if err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	if p.Description != gen.out {
		t.Fatalf("expected generated description, got %q", p.Description)
	}
	if gen.calls != 1 {
		t.Fatalf("generator should be called once, got %d", gen.calls)
	}
}

func TestCreateListingKeepsProvidedDescription(t *testing.T) {
	gen := &stubDescGen{out: "generated"}
	svc := NewCatalogService(&memCatalog{}, &memFavorites{}, gen, nil)
	actor := domain.User{ID: "u1", Name: "Alice"}

	p, err := svc.CreateListing(context.Background(), actor, ListingInput{
		Title:       "Mountain Bike",
		Price:       15000,
		Description: "my own words",
		Category:    domain.CategoryBikes,
		Condition:   domain.ConditionGood,
		Images:      []string{"https://img/1.jpg"},
	})
	if err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	if p.Description != "my own words" || gen.calls != 0 {
		t.Fatalf("provided description must win, got %q after %d calls", p.Description, gen.calls)
	}
}

func TestUpdateListingPreservesIdentityAndOwnership(t *testing.T) {
	catalog := &memCatalog{}
	svc := NewCatalogService(catalog, &memFavorites{}, nil, nil)
	actor := domain.User{ID: "u1", Name: "Alice"}

	p, err := svc.CreateListing(context.Background(), actor, ListingInput{
		Title:     "Old Title",
		Price:     100,
		Category:  domain.CategoryOther,
		Condition: domain.ConditionGood,
		Images:    []string{"https://img/1.jpg"},
	})
	if err != nil {
		t.Fatalf("create listing failed: %v", err)
	}

	updated := p
	updated.Title = "New Title"
	updated.CreatedAt = 0 // must be restored from the stored listing
	if err := svc.UpdateListing(actor, updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, _ := catalog.GetByID(p.ID)
	if stored.Title != "New Title" {
		t.Fatalf("title not updated: %+v", stored)
	}
	if stored.CreatedAt != p.CreatedAt {
		t.Fatalf("createdAt must be preserved, got %d want %d", stored.CreatedAt, p.CreatedAt)
	}

	// A different user cannot update it.
	other := domain.User{ID: "u2", Name: "Mallory"}
	if err := svc.UpdateListing(other, updated); err == nil {
		t.Fatalf("expected ownership check to reject the update")
	}
}

func TestFavoriteProductsSkipsDanglingIDs(t *testing.T) {
	catalog := &memCatalog{products: []domain.Product{
		{ID: "p1", Title: "Chair"},
	}}
	favorites := &memFavorites{}
	svc := NewCatalogService(catalog, favorites, nil, nil)

	if _, err := svc.ToggleFavorite("p1"); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if _, err := svc.ToggleFavorite("gone"); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	products, err := svc.FavoriteProducts()
	if err != nil {
		t.Fatalf("favorites failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("dangling favorite should be skipped, got %v", products)
	}
}

func TestToggleFavoriteIsAnInvolution(t *testing.T) {
	svc := NewCatalogService(&memCatalog{}, &memFavorites{}, nil, nil)

	on, err := svc.ToggleFavorite("p1")
	if err != nil || !on {
		t.Fatalf("first toggle should favorite: %v %v", on, err)
	}
	off, err := svc.ToggleFavorite("p1")
	if err != nil || off {
		t.Fatalf("second toggle should unfavorite: %v %v", off, err)
	}
	if fav, _ := svc.IsFavorite("p1"); fav {
		t.Fatalf("product should no longer be favorited")
	}
}

func TestMarkSoldRequiresOwnership(t *testing.T) {
	catalog := &memCatalog{products: []domain.Product{
		{ID: "p1", SellerID: "u1", Status: domain.StatusActive},
	}}
	svc := NewCatalogService(catalog, &memFavorites{}, nil, nil)

	if err := svc.MarkSold(domain.User{ID: "u2"}, "p1"); err == nil {
		t.Fatalf("expected foreign seller to be rejected")
	}
	if err := svc.MarkSold(domain.User{ID: "u1"}, "p1"); err != nil {
		t.Fatalf("owner mark sold failed: %v", err)
	}
	p, _ := catalog.GetByID("p1")
	if p.Status != domain.StatusSold {
		t.Fatalf("expected sold status, got %s", p.Status)
	}
}

// discoveryQueryCount sums fasterr_discovery_queries_total across sort labels
func discoveryQueryCount(t *testing.T) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != "fasterr_discovery_queries_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestBrowseCountsQueriesButQueryStaysPure(t *testing.T) {
	catalog := &memCatalog{products: sampleProducts()}
	svc := NewCatalogService(catalog, &memFavorites{}, nil, nil)

	before := discoveryQueryCount(t)
	Query(sampleProducts(), DefaultFilter())
	if got := discoveryQueryCount(t); got != before {
		t.Fatalf("Query must not record metrics, counter moved %v -> %v", before, got)
	}

	if _, err := svc.Browse(DefaultFilter()); err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if got := discoveryQueryCount(t); got != before+1 {
		t.Fatalf("Browse should record one query, counter moved %v -> %v", before, got)
	}
}
