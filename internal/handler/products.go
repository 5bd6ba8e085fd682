package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fasterr/marketplace/internal/domain"
)

// CreateProductRequest represents the body of a listing upload
type CreateProductRequest struct {
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
	SellerID    string   `json:"sellerId"`
	SellerName  string   `json:"sellerName"`
	Location    string   `json:"location"`
}

// CreateProductResponse acknowledges a stored listing
type CreateProductResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// ProductsHandler serves the mirror catalog over HTTP
type ProductsHandler struct {
	mirror domain.CatalogMirror
	logger *slog.Logger
}

// NewProductsHandler creates a new products handler
func NewProductsHandler(mirror domain.CatalogMirror, logger *slog.Logger) *ProductsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductsHandler{mirror: mirror, logger: logger}
}

// ServeHTTP routes /api/products and /api/products/{id}
func (h *ProductsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/products")
	id = strings.Trim(id, "/")

	switch {
	case r.Method == http.MethodGet && id == "":
		h.list(w, r)
	case r.Method == http.MethodGet:
		h.get(w, r, id)
	case r.Method == http.MethodPost && id == "":
		h.create(w, r)
	default:
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	}
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.mirror.List()
	if err != nil {
		h.logger.Error("failed to list products", slog.String("error", err.Error()))
		http.Error(w, `{"error":"failed to list products"}`, http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	product, err := h.mirror.GetByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, `{"error":"Product not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load product",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"failed to load product"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(product); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		http.Error(w, `{"error":"title is required"}`, http.StatusBadRequest)
		return
	}
	if req.Price < 0 {
		http.Error(w, `{"error":"price must not be negative"}`, http.StatusBadRequest)
		return
	}

	images := req.Images
	if len(images) == 0 && req.Image != "" {
		images = []string{req.Image}
	}
	if len(images) == 0 {
		http.Error(w, `{"error":"at least one image is required"}`, http.StatusBadRequest)
		return
	}

	p := domain.Product{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Category:    domain.Category(req.Category),
		Condition:   domain.Condition(req.Condition),
		Image:       images[0],
		Images:      images,
		SellerID:    req.SellerID,
		SellerName:  req.SellerName,
		Location:    req.Location,
	}

	id, err := h.mirror.Create(p)
	if err != nil {
		h.logger.Error("failed to create product", slog.String("error", err.Error()))
		http.Error(w, `{"error":"failed to create product"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("product created",
		slog.String("product_id", id),
		slog.String("seller_id", req.SellerID),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(CreateProductResponse{Success: true, ID: id}); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
