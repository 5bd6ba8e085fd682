package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/observability/metrics"
	"github.com/fasterr/marketplace/internal/store"
)

// StoreSession implements domain.SessionRepository. Login replaces the stored
// user wholesale; logout clears the namespace.
type StoreSession struct {
	store  store.Store
	logger *slog.Logger
}

// NewStoreSession creates a session repository
func NewStoreSession(s store.Store, logger *slog.Logger) *StoreSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreSession{store: s, logger: logger}
}

// Save persists u as the current user
func (r *StoreSession) Save(u domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := r.store.Set(context.Background(), store.KeyUser, string(data)); err != nil {
		metrics.ObserveStoreWrite("user", writeResult(err))
		return err
	}
	metrics.ObserveStoreWrite("user", "success")
	return nil
}

// Current returns the logged-in user, or domain.ErrNotFound for a guest
func (r *StoreSession) Current() (domain.User, error) {
	raw, ok, err := r.store.Get(context.Background(), store.KeyUser)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		r.logger.Warn("discarding malformed session data", slog.String("error", err.Error()))
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// Clear logs the current user out
func (r *StoreSession) Clear() error {
	return r.store.Remove(context.Background(), store.KeyUser)
}
