package domain

import "errors"

// ErrEmptyMessage is returned when a chat message carries neither text nor an
// attachment nor a shared location.
var ErrEmptyMessage = errors.New("message must carry text, an attachment, or a location")

// GeoPoint is a shared map position inside a chat message
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ChatMessage is one append-only entry in a per-product thread. Thread order
// is by CreatedAt ascending.
type ChatMessage struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	SenderID   string    `json:"senderId"`
	Text       string    `json:"text,omitempty"`
	Attachment string    `json:"attachment,omitempty"`
	Location   *GeoPoint `json:"location,omitempty"`
	CreatedAt  int64     `json:"createdAt"`
}

// Validate enforces that a message carries at least one kind of content
func (m *ChatMessage) Validate() error {
	if m.ProductID == "" || m.SenderID == "" {
		return errors.New("message needs product and sender ids")
	}
	if m.Text == "" && m.Attachment == "" && m.Location == nil {
		return ErrEmptyMessage
	}
	return nil
}

// ChatRepository defines data access for product threads
type ChatRepository interface {
	Append(m ChatMessage) error
	// ListByProduct returns the thread sorted by CreatedAt ascending.
	ListByProduct(productID string) ([]ChatMessage, error)
}

// FavoriteRepository persists the local user's favorite-id set. Entries are
// weak references: a favorite may outlive its product and must be
// existence-checked at read time.
type FavoriteRepository interface {
	// Toggle flips membership and reports the new state.
	Toggle(productID string) (bool, error)
	List() ([]string, error)
	Contains(productID string) (bool, error)
}
