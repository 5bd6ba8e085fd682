package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/store"
)

func testProduct(id, sellerID string) domain.Product {
	return domain.Product{
		ID:        id,
		Title:     "Test Item " + id,
		Price:     100,
		Category:  domain.CategoryOther,
		Condition: domain.ConditionGood,
		Image:     "https://img/1.jpg",
		Images:    []string{"https://img/1.jpg"},
		SellerID:  sellerID,
		CreatedAt: time.Now().UnixMilli(),
		Status:    domain.StatusActive,
	}
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	kv := newMemStore()
	repo := NewStoreCatalog(kv, nil)

	if err := repo.EnsureSeeded(50, false); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	first, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(first) == 0 {
		t.Fatalf("expected seeded products")
	}

	// Mutate, then seed again; the mutation must survive.
	if err := repo.Create(testProduct("mine", "u1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.EnsureSeeded(50, false); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if _, err := repo.GetByID("mine"); err != nil {
		t.Fatalf("reseeding clobbered user data: %v", err)
	}
}

func TestEnsureSeededForceResets(t *testing.T) {
	kv := newMemStore()
	repo := NewStoreCatalog(kv, nil)

	if err := repo.EnsureSeeded(10, false); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := repo.Create(testProduct("mine", "u1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.EnsureSeeded(10, true); err != nil {
		t.Fatalf("forced seed failed: %v", err)
	}
	if _, err := repo.GetByID("mine"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("forced reseed should discard user data, got %v", err)
	}
}

func TestCreatePrependsNewest(t *testing.T) {
	repo := NewStoreCatalog(newMemStore(), nil)

	if err := repo.Create(testProduct("p1", "u1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(testProduct("p2", "u1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	products, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if products[0].ID != "p2" || products[1].ID != "p1" {
		t.Fatalf("newest should come first, got %s then %s", products[0].ID, products[1].ID)
	}
}

func TestCreateRejectsInvalidProduct(t *testing.T) {
	repo := NewStoreCatalog(newMemStore(), nil)

	p := testProduct("p1", "u1")
	p.Price = -1
	if err := repo.Create(p); err == nil {
		t.Fatalf("expected negative price to be rejected")
	}
	if products, _ := repo.List(); len(products) != 0 {
		t.Fatalf("rejected create must not persist anything")
	}
}

func TestUpdatePreservesOtherProducts(t *testing.T) {
	repo := NewStoreCatalog(newMemStore(), nil)

	original := testProduct("p1", "u1")
	if err := repo.Create(original); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(testProduct("p2", "u1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated := original
	updated.Title = "Renamed"
	if err := repo.Update(updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.GetByID("p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Title != "Renamed" {
		t.Fatalf("title not updated: %q", got.Title)
	}
	if got.ID != original.ID || got.CreatedAt != original.CreatedAt {
		t.Fatalf("identity fields changed: %+v", got)
	}
	if _, err := repo.GetByID("p2"); err != nil {
		t.Fatalf("unrelated product lost: %v", err)
	}
}

func TestUpdateMissingProduct(t *testing.T) {
	repo := NewStoreCatalog(newMemStore(), nil)
	if err := repo.Update(testProduct("ghost", "u1")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectedWriteLeavesCatalogIntact(t *testing.T) {
	kv := newMemStore()
	repo := NewStoreCatalog(kv, nil)

	if err := repo.Create(testProduct("p1", "u1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	kv.failNextSet = true
	err := repo.Create(testProduct("p2", "u1"))
	if !errors.Is(err, store.ErrCapacityExceeded) {
		t.Fatalf("expected capacity error, got %v", err)
	}

	products, _ := repo.List()
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("rejected write must leave previous state, got %v", products)
	}
}

func TestMarkSoldOwnershipAndIdempotence(t *testing.T) {
	repo := NewStoreCatalog(newMemStore(), nil)
	if err := repo.Create(testProduct("p1", "u1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.MarkSold("p1", "intruder"); err == nil {
		t.Fatalf("expected foreign seller to be rejected")
	}
	if err := repo.MarkSold("p1", "u1"); err != nil {
		t.Fatalf("mark sold failed: %v", err)
	}
	// Marking an already sold listing is a no-op.
	if err := repo.MarkSold("p1", "u1"); err != nil {
		t.Fatalf("second mark sold failed: %v", err)
	}

	p, _ := repo.GetByID("p1")
	if p.Status != domain.StatusSold {
		t.Fatalf("expected sold, got %s", p.Status)
	}
}

func TestListBySellerIncludesSold(t *testing.T) {
	repo := NewStoreCatalog(newMemStore(), nil)
	if err := repo.Create(testProduct("p1", "u1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(testProduct("p2", "u2")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.MarkSold("p1", "u1"); err != nil {
		t.Fatalf("mark sold failed: %v", err)
	}

	mine, err := repo.ListBySeller("u1")
	if err != nil {
		t.Fatalf("list by seller failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "p1" || mine[0].Status != domain.StatusSold {
		t.Fatalf("sold listings must stay visible to their seller, got %v", mine)
	}
}

func TestLoadToleratesMalformedData(t *testing.T) {
	kv := newMemStore()
	kv.data[store.KeyProducts] = "{not json"
	repo := NewStoreCatalog(kv, nil)

	products, err := repo.List()
	if err != nil {
		t.Fatalf("malformed data should not error: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("malformed data should read as empty, got %v", products)
	}
}
