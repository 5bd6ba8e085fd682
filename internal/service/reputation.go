package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/pkg/cache"
)

// Reputation prior: every seller starts from this baseline so a new account
// does not show a cold-start zero.
const (
	priorRating = 4.5
	priorWeight = 10
)

const statsCacheTTL = 30 * time.Second

// SellerStats is the derived reputation view for one seller. ReviewCount is a
// display convention: it includes the prior weight, not just real reviews.
type SellerStats struct {
	TotalListings int    `json:"totalListings"`
	AverageRating string `json:"averageRating"`
	ReviewCount   int    `json:"reviewCount"`
}

// ReputationService derives seller stats from the catalog and stored reviews
type ReputationService struct {
	catalog domain.CatalogRepository
	reviews domain.ReviewRepository
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewReputationService creates a reputation service. cache may be nil.
func NewReputationService(
	catalog domain.CatalogRepository,
	reviews domain.ReviewRepository,
	c *cache.Cache,
	logger *slog.Logger,
) *ReputationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReputationService{catalog: catalog, reviews: reviews, cache: c, logger: logger}
}

// Stats blends the seller's reviews against the fixed prior:
// (4.5*10 + sum(ratings)) / (10 + count), shown with one decimal place.
func (s *ReputationService) Stats(sellerID string) (SellerStats, error) {
	cacheKey := "stats:" + sellerID
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey); ok {
			return v.(SellerStats), nil
		}
	}

	listings, err := s.catalog.ListBySeller(sellerID)
	if err != nil {
		return SellerStats{}, fmt.Errorf("failed to count listings: %w", err)
	}
	reviews, err := s.reviews.ListBySeller(sellerID)
	if err != nil {
		return SellerStats{}, fmt.Errorf("failed to load reviews: %w", err)
	}

	total := priorRating * priorWeight
	count := priorWeight
	for _, r := range reviews {
		total += float64(r.Rating)
		count++
	}

	stats := SellerStats{
		TotalListings: len(listings),
		AverageRating: fmt.Sprintf("%.1f", total/float64(count)),
		ReviewCount:   count,
	}
	if s.cache != nil {
		s.cache.Set(cacheKey, stats, statsCacheTTL)
	}
	return stats, nil
}

// Reviews returns the seller's reviews, newest first
func (s *ReputationService) Reviews(sellerID string) ([]domain.Review, error) {
	return s.reviews.ListBySeller(sellerID)
}

// AddReview appends a buyer's review of a seller and invalidates the cached
// stats so the next read reflects it.
func (s *ReputationService) AddReview(actor domain.User, sellerID string, rating int, comment string) (domain.Review, error) {
	review := domain.Review{
		ID:        domain.NewID(),
		SellerID:  sellerID,
		BuyerID:   actor.ID,
		BuyerName: actor.Name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.reviews.Add(review); err != nil {
		return domain.Review{}, err
	}
	if s.cache != nil {
		s.cache.Delete("stats:" + sellerID)
	}
	s.logger.Info("review added",
		slog.String("seller_id", sellerID),
		slog.Int("rating", rating),
	)
	return review, nil
}
