package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/service"
)

// AddReviewRequest represents a review submission
type AddReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SellersHandler serves seller reputation: aggregated stats and reviews
type SellersHandler struct {
	reputation *service.ReputationService
	logger     *slog.Logger
}

// NewSellersHandler creates a new sellers handler
func NewSellersHandler(reputation *service.ReputationService, logger *slog.Logger) *SellersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SellersHandler{reputation: reputation, logger: logger}
}

// ServeHTTP routes /api/sellers/{id}/stats and /api/sellers/{id}/reviews
func (h *SellersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sellers"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	sellerID, resource := parts[0], parts[1]

	switch {
	case resource == "stats" && r.Method == http.MethodGet:
		h.stats(w, r, sellerID)
	case resource == "reviews" && r.Method == http.MethodGet:
		h.listReviews(w, r, sellerID)
	case resource == "reviews" && r.Method == http.MethodPost:
		h.addReview(w, r, sellerID)
	default:
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	}
}

func (h *SellersHandler) stats(w http.ResponseWriter, r *http.Request, sellerID string) {
	stats, err := h.reputation.Stats(sellerID)
	if err != nil {
		h.logger.Error("failed to load seller stats",
			slog.String("seller_id", sellerID),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"failed to load stats"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}

func (h *SellersHandler) listReviews(w http.ResponseWriter, r *http.Request, sellerID string) {
	reviews, err := h.reputation.Reviews(sellerID)
	if err != nil {
		h.logger.Error("failed to list reviews",
			slog.String("seller_id", sellerID),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"failed to list reviews"}`, http.StatusInternalServerError)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	writeJSON(w, h.logger, http.StatusOK, reviews)
}

func (h *SellersHandler) addReview(w http.ResponseWriter, r *http.Request, sellerID string) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
		return
	}

	var req AddReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	review, err := h.reputation.AddReview(actor, sellerID, req.Rating, req.Comment)
	if err != nil {
		h.logger.Error("failed to add review",
			slog.String("seller_id", sellerID),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"failed to add review"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, review)
}
