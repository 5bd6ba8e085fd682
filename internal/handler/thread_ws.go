package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fasterr/marketplace/internal/service"
)

// ThreadStreamHandler streams conversation events for one product thread
// over a WebSocket.
type ThreadStreamHandler struct {
	conversations  *service.Conversations
	logger         *slog.Logger
	allowedOrigins []string
}

// NewThreadStreamHandler creates a new thread stream handler
func NewThreadStreamHandler(conversations *service.Conversations, logger *slog.Logger, allowedOrigins []string) *ThreadStreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThreadStreamHandler{
		conversations:  conversations,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *ThreadStreamHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no origin
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles WebSocket requests at /ws/threads/{id}
func (h *ThreadStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) >= 4 {
			productID = parts[3]
		}
	}

	if productID == "" {
		http.Error(w, "missing product id", http.StatusBadRequest)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	events, unsubscribe := h.conversations.Subscribe(productID)
	defer unsubscribe()

	h.logger.Debug("thread stream opened", slog.String("product_id", productID))

	// Drain client frames so pings and close messages are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := ws.WriteJSON(ev); err != nil {
				h.logger.Debug("thread stream write failed",
					slog.String("product_id", productID),
					slog.String("error", err.Error()),
				)
				return
			}
		}
	}
}
