package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/security/middleware"
	"github.com/fasterr/marketplace/internal/service"
)

// CreateListingRequest represents a sell-form submission
type CreateListingRequest struct {
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Features    string   `json:"features"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Images      []string `json:"images"`
	Location    string   `json:"location"`
}

// CatalogHandler serves the local discovery engine over HTTP: filtered
// browsing, suggestions, listing mutations and favorites.
type CatalogHandler struct {
	catalog   *service.CatalogService
	suggester *service.Suggester
	logger    *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *service.CatalogService, suggester *service.Suggester, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{catalog: catalog, suggester: suggester, logger: logger}
}

// ServeHTTP routes /api/catalog and its subresources
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/catalog"), "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.browse(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.create(w, r)
	case rest == "suggest" && r.Method == http.MethodGet:
		h.suggest(w, r)
	case strings.HasSuffix(rest, "/sold") && r.Method == http.MethodPost:
		h.markSold(w, r, strings.TrimSuffix(rest, "/sold"))
	case strings.HasSuffix(rest, "/favorite") && r.Method == http.MethodPost:
		h.toggleFavorite(w, r, strings.TrimSuffix(rest, "/favorite"))
	case rest != "" && r.Method == http.MethodGet:
		h.get(w, r, rest)
	default:
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	}
}

func (h *CatalogHandler) browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := service.DefaultFilter()
	if v := q.Get("q"); v != "" {
		f.Text = v
	}
	if v := q.Get("category"); v != "" {
		f.Category = v
	}
	if v := q.Get("minPrice"); v != "" {
		f.MinPrice = v
	}
	if v := q.Get("maxPrice"); v != "" {
		f.MaxPrice = v
	}
	if v := q.Get("condition"); v != "" {
		f.Condition = v
	}
	if v := q.Get("location"); v != "" {
		f.Location = v
	}
	if v := q.Get("sort"); v != "" {
		f.Sort = v
	}

	products, err := h.catalog.Browse(f)
	if err != nil {
		h.logger.Error("browse failed", slog.String("error", err.Error()))
		http.Error(w, `{"error":"browse failed"}`, http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, h.logger, http.StatusOK, products)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	product, err := h.catalog.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, `{"error":"Product not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load product", slog.String("product_id", id), slog.String("error", err.Error()))
		http.Error(w, `{"error":"failed to load product"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, product)
}

func (h *CatalogHandler) suggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.suggester.Suggest(r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("suggest failed", slog.String("error", err.Error()))
		http.Error(w, `{"error":"suggest failed"}`, http.StatusInternalServerError)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, suggestions)
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
		return
	}

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	product, err := h.catalog.CreateListing(r.Context(), actor, service.ListingInput{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Features:    req.Features,
		Category:    domain.Category(req.Category),
		Condition:   domain.Condition(req.Condition),
		Images:      req.Images,
		Location:    req.Location,
	})
	if err != nil {
		h.logger.Error("failed to create listing", slog.String("error", err.Error()))
		http.Error(w, `{"error":"failed to create listing"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, product)
}

func (h *CatalogHandler) markSold(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
		return
	}

	if err := h.catalog.MarkSold(actor, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, `{"error":"Product not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to mark sold", slog.String("product_id", id), slog.String("error", err.Error()))
		http.Error(w, `{"error":"failed to mark sold"}`, http.StatusForbidden)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"success": true})
}

func (h *CatalogHandler) toggleFavorite(w http.ResponseWriter, r *http.Request, id string) {
	favorited, err := h.catalog.ToggleFavorite(id)
	if err != nil {
		h.logger.Error("failed to toggle favorite", slog.String("product_id", id), slog.String("error", err.Error()))
		http.Error(w, `{"error":"failed to toggle favorite"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"favorited": favorited})
}

// FavoritesHandler serves GET /api/favorites
type FavoritesHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewFavoritesHandler(catalog *service.CatalogService, logger *slog.Logger) *FavoritesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoritesHandler{catalog: catalog, logger: logger}
}

func (h *FavoritesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	products, err := h.catalog.FavoriteProducts()
	if err != nil {
		h.logger.Error("failed to list favorites", slog.String("error", err.Error()))
		http.Error(w, `{"error":"failed to list favorites"}`, http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, h.logger, http.StatusOK, products)
}

// actorFromContext rebuilds the acting user from validated JWT claims
func actorFromContext(r *http.Request) (domain.User, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return domain.User{}, false
	}
	return domain.User{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
	}, true
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
