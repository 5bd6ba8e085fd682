package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fasterr/marketplace/internal/observability/metrics"
	"github.com/fasterr/marketplace/internal/store"
)

// StoreFavorites implements domain.FavoriteRepository over the durable store.
// The set is a JSON array of product ids under its own namespace; order is
// irrelevant and duplicates never occur.
type StoreFavorites struct {
	store  store.Store
	logger *slog.Logger
}

// NewStoreFavorites creates a favorites repository
func NewStoreFavorites(s store.Store, logger *slog.Logger) *StoreFavorites {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreFavorites{store: s, logger: logger}
}

// Toggle flips membership for productID and returns the new state. A rejected
// store write leaves the set unchanged.
func (r *StoreFavorites) Toggle(productID string) (bool, error) {
	ids, err := r.load()
	if err != nil {
		return false, err
	}

	favorited := true
	next := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		if id == productID {
			favorited = false
			continue
		}
		next = append(next, id)
	}
	if favorited {
		next = append(next, productID)
	}

	if err := r.save(next); err != nil {
		return false, err
	}
	return favorited, nil
}

// List returns the raw favorite id set. Entries may reference products that no
// longer exist; callers existence-check before rendering.
func (r *StoreFavorites) List() ([]string, error) {
	return r.load()
}

// Contains reports membership for one product id
func (r *StoreFavorites) Contains(productID string) (bool, error) {
	ids, err := r.load()
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *StoreFavorites) load() ([]string, error) {
	raw, ok, err := r.store.Get(context.Background(), store.KeyFavorites)
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		r.logger.Warn("discarding malformed favorites data", slog.String("error", err.Error()))
		return nil, nil
	}
	return ids, nil
}

func (r *StoreFavorites) save(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}
	if err := r.store.Set(context.Background(), store.KeyFavorites, string(data)); err != nil {
		metrics.ObserveStoreWrite("favorites", writeResult(err))
		return err
	}
	metrics.ObserveStoreWrite("favorites", "success")
	return nil
}
