package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/observability/metrics"
)

// ListingInput is what a seller submits from the sell form. Description may
// be empty, in which case the generator writes one from the feature notes.
type ListingInput struct {
	Title       string
	Price       float64
	Description string
	Features    string
	Category    domain.Category
	Condition   domain.Condition
	Images      []string
	Location    string
}

// CatalogService wraps the catalog repository with listing lifecycle logic.
// Every operation takes the acting user explicitly; there is no ambient
// current-user state inside the engine.
type CatalogService struct {
	catalog   domain.CatalogRepository
	favorites domain.FavoriteRepository
	descGen   DescriptionGenerator
	logger    *slog.Logger
}

// NewCatalogService creates a catalog service. descGen may be nil, in which
// case empty descriptions stay empty.
func NewCatalogService(
	catalog domain.CatalogRepository,
	favorites domain.FavoriteRepository,
	descGen DescriptionGenerator,
	logger *slog.Logger,
) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{catalog: catalog, favorites: favorites, descGen: descGen, logger: logger}
}

// CreateListing builds and persists a new listing for the actor. The
// description generator is fallible and never blocks the mutation.
func (s *CatalogService) CreateListing(ctx context.Context, actor domain.User, in ListingInput) (domain.Product, error) {
	description := in.Description
	if description == "" && s.descGen != nil {
		description = s.descGen.GenerateDescription(ctx, in.Title, string(in.Category), in.Features)
	}

	images := in.Images
	if len(images) == 0 {
		return domain.Product{}, fmt.Errorf("listing needs at least one image")
	}

	p := domain.Product{
		ID:          domain.NewID(),
		Title:       in.Title,
		Price:       in.Price,
		Description: description,
		Category:    in.Category,
		Condition:   in.Condition,
		Image:       images[0],
		Images:      images,
		SellerID:    actor.ID,
		SellerName:  actor.Name,
		CreatedAt:   time.Now().UnixMilli(),
		Location:    in.Location,
		Status:      domain.StatusActive,
	}
	if err := s.catalog.Create(p); err != nil {
		return domain.Product{}, err
	}

	if products, err := s.catalog.List(); err == nil {
		metrics.SetCatalogSize(len(products))
	}
	s.logger.Info("listing created",
		slog.String("product_id", p.ID),
		slog.String("seller_id", actor.ID),
	)
	return p, nil
}

// UpdateListing replaces an existing listing. Only the seller may update it;
// id and creation time never change.
func (s *CatalogService) UpdateListing(actor domain.User, p domain.Product) error {
	existing, err := s.catalog.GetByID(p.ID)
	if err != nil {
		return err
	}
	if existing.SellerID != actor.ID {
		return fmt.Errorf("listing %s is not owned by %s", p.ID, actor.ID)
	}
	p.SellerID = existing.SellerID
	p.SellerName = existing.SellerName
	p.CreatedAt = existing.CreatedAt
	return s.catalog.Update(p)
}

// MarkSold transitions the actor's listing to sold
func (s *CatalogService) MarkSold(actor domain.User, productID string) error {
	return s.catalog.MarkSold(productID, actor.ID)
}

// Get returns one listing by id
func (s *CatalogService) Get(productID string) (domain.Product, error) {
	return s.catalog.GetByID(productID)
}

// Browse runs a discovery query over the active catalog
func (s *CatalogService) Browse(f Filter) ([]domain.Product, error) {
	products, err := s.catalog.List()
	if err != nil {
		return nil, err
	}
	metrics.ObserveQuery(sortOrDefault(f.Sort))
	return Query(products, f), nil
}

// MyListings returns the actor's own listings, sold ones included
func (s *CatalogService) MyListings(actor domain.User) ([]domain.Product, error) {
	return s.catalog.ListBySeller(actor.ID)
}

// ToggleFavorite flips the favorite state of a product and reports the new
// state.
func (s *CatalogService) ToggleFavorite(productID string) (bool, error) {
	return s.favorites.Toggle(productID)
}

// IsFavorite reports whether the product is currently favorited
func (s *CatalogService) IsFavorite(productID string) (bool, error) {
	return s.favorites.Contains(productID)
}

// FavoriteProducts resolves the favorite set to products. Favorites are weak
// references, so ids without a matching product are silently skipped.
func (s *CatalogService) FavoriteProducts() ([]domain.Product, error) {
	ids, err := s.favorites.List()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	products, err := s.catalog.List()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var out []domain.Product
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
