package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/service"
)

// SendMessageRequest represents a chat message submission. At least one of
// text, attachment or location must be set.
type SendMessageRequest struct {
	Text       string           `json:"text,omitempty"`
	Attachment string           `json:"attachment,omitempty"`
	Location   *domain.GeoPoint `json:"location,omitempty"`
}

// ThreadStateResponse reports the transient state of a thread
type ThreadStateResponse struct {
	Unread   int  `json:"unread"`
	Notified bool `json:"notified"`
}

// ThreadsHandler serves per-product conversation threads
type ThreadsHandler struct {
	conversations *service.Conversations
	logger        *slog.Logger
}

// NewThreadsHandler creates a new threads handler
func NewThreadsHandler(conversations *service.Conversations, logger *slog.Logger) *ThreadsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThreadsHandler{conversations: conversations, logger: logger}
}

// ServeHTTP routes /api/threads/{id}/...
func (h *ThreadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/threads"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	productID, resource := parts[0], parts[1]

	switch {
	case resource == "messages" && r.Method == http.MethodGet:
		h.history(w, r, productID)
	case resource == "messages" && r.Method == http.MethodPost:
		h.send(w, r, productID)
	case resource == "open" && r.Method == http.MethodPost:
		h.conversations.Open(productID)
		writeJSON(w, h.logger, http.StatusOK, map[string]any{"success": true})
	case resource == "close" && r.Method == http.MethodPost:
		h.conversations.Close(productID)
		writeJSON(w, h.logger, http.StatusOK, map[string]any{"success": true})
	case resource == "end" && r.Method == http.MethodPost:
		h.conversations.End(productID)
		writeJSON(w, h.logger, http.StatusOK, map[string]any{"success": true})
	case resource == "state" && r.Method == http.MethodGet:
		writeJSON(w, h.logger, http.StatusOK, ThreadStateResponse{
			Unread:   h.conversations.Unread(productID),
			Notified: h.conversations.Notified(productID),
		})
	default:
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	}
}

func (h *ThreadsHandler) history(w http.ResponseWriter, r *http.Request, productID string) {
	messages, err := h.conversations.History(productID)
	if err != nil {
		h.logger.Error("failed to load thread",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"failed to load thread"}`, http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	writeJSON(w, h.logger, http.StatusOK, messages)
}

func (h *ThreadsHandler) send(w http.ResponseWriter, r *http.Request, productID string) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	msg, err := h.conversations.Send(actor.ID, productID, service.Content{
		Text:       req.Text,
		Attachment: req.Attachment,
		Location:   req.Location,
	})
	if err != nil {
		h.logger.Error("failed to send message",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"message not sent"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, msg)
}
