package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/observability/metrics"
	"github.com/fasterr/marketplace/internal/seed"
	"github.com/fasterr/marketplace/internal/store"
)

// StoreCatalog implements domain.CatalogRepository over the durable store.
// The full collection lives as one JSON document under the products namespace,
// so every mutation is a read-modify-write and a rejected write leaves the
// previous state intact.
type StoreCatalog struct {
	store  store.Store
	logger *slog.Logger
}

// NewStoreCatalog creates a catalog repository
func NewStoreCatalog(s store.Store, logger *slog.Logger) *StoreCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreCatalog{store: s, logger: logger}
}

// EnsureSeeded persists the demo dataset once. Calling it again is a no-op
// unless force is set, so it is safe to run on every process start.
func (r *StoreCatalog) EnsureSeeded(count int, force bool) error {
	if !force {
		_, ok, err := r.store.Get(context.Background(), store.KeyProducts)
		if err != nil {
			return fmt.Errorf("failed to check seed state: %w", err)
		}
		if ok {
			return nil
		}
	}

	products := seed.Dataset(count, time.Now())
	if err := r.save(products); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	r.logger.Info("catalog seeded", slog.Int("products", len(products)))
	return nil
}

// List returns the catalog in stored order, newest insertion first. Sorting
// beyond that is the discovery engine's job.
func (r *StoreCatalog) List() ([]domain.Product, error) {
	return r.load()
}

// GetByID returns the product or domain.ErrNotFound
func (r *StoreCatalog) GetByID(id string) (domain.Product, error) {
	products, err := r.load()
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

// Create validates and prepends the product. If the store rejects the write
// nothing is mutated.
func (r *StoreCatalog) Create(p domain.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	products, err := r.load()
	if err != nil {
		return err
	}
	next := make([]domain.Product, 0, len(products)+1)
	next = append(next, p)
	next = append(next, products...)
	if err := r.save(next); err != nil {
		return err
	}
	r.logger.Debug("product created", slog.String("product_id", p.ID))
	return nil
}

// Update replaces the product whose id matches, or reports
// domain.ErrNotFound without writing.
func (r *StoreCatalog) Update(p domain.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	products, err := r.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		return fmt.Errorf("product %s: %w", p.ID, domain.ErrNotFound)
	}
	if err := r.save(products); err != nil {
		return err
	}
	r.logger.Debug("product updated", slog.String("product_id", p.ID))
	return nil
}

// MarkSold transitions a listing to sold. Only the listing's seller may do
// this.
func (r *StoreCatalog) MarkSold(id, sellerID string) error {
	p, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if p.SellerID != sellerID {
		return fmt.Errorf("product %s is not owned by %s", id, sellerID)
	}
	if p.Status == domain.StatusSold {
		return nil
	}
	p.Status = domain.StatusSold
	return r.Update(p)
}

// ListBySeller returns every listing for a seller, sold ones included; this
// backs the "my listings" view, which never hides sold items.
func (r *StoreCatalog) ListBySeller(sellerID string) ([]domain.Product, error) {
	products, err := r.load()
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// load tolerates malformed stored data: it logs and reports an empty catalog
// so a corrupt document can be reseeded rather than crashing the engine.
func (r *StoreCatalog) load() ([]domain.Product, error) {
	raw, ok, err := r.store.Get(context.Background(), store.KeyProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var products []domain.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		r.logger.Warn("discarding malformed product data", slog.String("error", err.Error()))
		return nil, nil
	}
	return products, nil
}

func (r *StoreCatalog) save(products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	if err := r.store.Set(context.Background(), store.KeyProducts, string(data)); err != nil {
		if errors.Is(err, store.ErrCapacityExceeded) {
			metrics.ObserveStoreWrite("products", "capacity")
			return err
		}
		metrics.ObserveStoreWrite("products", "error")
		return fmt.Errorf("failed to persist products: %w", err)
	}
	metrics.ObserveStoreWrite("products", "success")
	return nil
}
