package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/observability/metrics"
	"github.com/fasterr/marketplace/internal/store"
)

// writeResult maps a store error to a metrics label
func writeResult(err error) string {
	if errors.Is(err, store.ErrCapacityExceeded) {
		return "capacity"
	}
	return "error"
}

// StoreReviews implements domain.ReviewRepository over the durable store.
// Reviews are append-only and never edited or deleted.
type StoreReviews struct {
	store  store.Store
	logger *slog.Logger
}

// NewStoreReviews creates a review repository
func NewStoreReviews(s store.Store, logger *slog.Logger) *StoreReviews {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreReviews{store: s, logger: logger}
}

// Add appends a review
func (r *StoreReviews) Add(review domain.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("invalid review: %w", err)
	}
	reviews, err := r.load()
	if err != nil {
		return err
	}
	reviews = append(reviews, review)
	if err := r.save(reviews); err != nil {
		return err
	}
	r.logger.Debug("review added",
		slog.String("review_id", review.ID),
		slog.String("seller_id", review.SellerID),
	)
	return nil
}

// ListBySeller returns the seller's reviews, newest first
func (r *StoreReviews) ListBySeller(sellerID string) ([]domain.Review, error) {
	reviews, err := r.load()
	if err != nil {
		return nil, err
	}
	var out []domain.Review
	for _, rev := range reviews {
		if rev.SellerID == sellerID {
			out = append(out, rev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (r *StoreReviews) load() ([]domain.Review, error) {
	raw, ok, err := r.store.Get(context.Background(), store.KeyReviews)
	if err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var reviews []domain.Review
	if err := json.Unmarshal([]byte(raw), &reviews); err != nil {
		r.logger.Warn("discarding malformed review data", slog.String("error", err.Error()))
		return nil, nil
	}
	return reviews, nil
}

func (r *StoreReviews) save(reviews []domain.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("failed to marshal reviews: %w", err)
	}
	if err := r.store.Set(context.Background(), store.KeyReviews, string(data)); err != nil {
		metrics.ObserveStoreWrite("reviews", writeResult(err))
		return err
	}
	metrics.ObserveStoreWrite("reviews", "success")
	return nil
}
