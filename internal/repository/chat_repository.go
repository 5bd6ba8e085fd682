package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/observability/metrics"
	"github.com/fasterr/marketplace/internal/store"
)

// StoreChats implements domain.ChatRepository over the durable store. All
// threads share one namespace; messages are filtered by product id on read.
type StoreChats struct {
	store  store.Store
	logger *slog.Logger
}

// NewStoreChats creates a chat repository
func NewStoreChats(s store.Store, logger *slog.Logger) *StoreChats {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreChats{store: s, logger: logger}
}

// Append adds a message to its thread. A rejected store write means the
// message was never sent.
func (r *StoreChats) Append(m domain.ChatMessage) error {
	if err := m.Validate(); err != nil {
		return err
	}
	messages, err := r.load()
	if err != nil {
		return err
	}
	messages = append(messages, m)
	if err := r.save(messages); err != nil {
		return err
	}
	r.logger.Debug("message appended",
		slog.String("message_id", m.ID),
		slog.String("product_id", m.ProductID),
	)
	return nil
}

// ListByProduct returns the thread sorted by CreatedAt ascending
func (r *StoreChats) ListByProduct(productID string) ([]domain.ChatMessage, error) {
	messages, err := r.load()
	if err != nil {
		return nil, err
	}
	var out []domain.ChatMessage
	for _, m := range messages {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (r *StoreChats) load() ([]domain.ChatMessage, error) {
	raw, ok, err := r.store.Get(context.Background(), store.KeyChats)
	if err != nil {
		return nil, fmt.Errorf("failed to read chats: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var messages []domain.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		r.logger.Warn("discarding malformed chat data", slog.String("error", err.Error()))
		return nil, nil
	}
	return messages, nil
}

func (r *StoreChats) save(messages []domain.ChatMessage) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal chats: %w", err)
	}
	if err := r.store.Set(context.Background(), store.KeyChats, string(data)); err != nil {
		metrics.ObserveStoreWrite("chats", writeResult(err))
		return err
	}
	metrics.ObserveStoreWrite("chats", "success")
	return nil
}
