// Package store provides the durable key-value layer every other component
// persists through. Values are serialized text; callers own (de)serialization.
package store

import (
	"context"
	"errors"
)

// ErrCapacityExceeded signals that a write could not be completed because the
// backing storage is full. The store is left unchanged when this is returned.
var ErrCapacityExceeded = errors.New("storage capacity exceeded")

// Namespace keys for the persisted state. Each namespace is independently
// readable and writable; there are no cross-namespace transactions.
const (
	KeyProducts  = "fasterr:products"
	KeyUser      = "fasterr:user"
	KeyFavorites = "fasterr:favorites"
	KeyReviews   = "fasterr:reviews"
	KeyChats     = "fasterr:chats"
)

// Store is a key-space abstraction over persisted JSON documents. Set is
// atomic: either the new value is fully persisted or the previous value
// remains and an error is returned.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
