package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fasterr/marketplace/internal/domain"
)

// memCatalog is an in-memory domain.CatalogRepository for service tests
type memCatalog struct {
	mu        sync.Mutex
	products  []domain.Product
	listCalls int
	failList  bool
}

func (m *memCatalog) List() ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.failList {
		return nil, errors.New("list failed")
	}
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *memCatalog) GetByID(id string) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

func (m *memCatalog) Create(p domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append([]domain.Product{p}, m.products...)
	return nil
}

func (m *memCatalog) Update(p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = p
			return nil
		}
	}
	return fmt.Errorf("product %s: %w", p.ID, domain.ErrNotFound)
}

func (m *memCatalog) MarkSold(id, sellerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			if m.products[i].SellerID != sellerID {
				return fmt.Errorf("product %s is not owned by %s", id, sellerID)
			}
			m.products[i].Status = domain.StatusSold
			return nil
		}
	}
	return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

func (m *memCatalog) ListBySeller(sellerID string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// memReviews is an in-memory domain.ReviewRepository
type memReviews struct {
	mu      sync.Mutex
	reviews []domain.Review
}

func (m *memReviews) Add(r domain.Review) error {
	if err := r.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *memReviews) ListBySeller(sellerID string) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Review
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].SellerID == sellerID {
			out = append(out, m.reviews[i])
		}
	}
	return out, nil
}

// memChats is an in-memory domain.ChatRepository; failAppend simulates the
// store rejecting the write.
type memChats struct {
	mu         sync.Mutex
	messages   []domain.ChatMessage
	failAppend bool
}

func (m *memChats) Append(msg domain.ChatMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend {
		return errors.New("store full")
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memChats) ListByProduct(productID string) ([]domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ChatMessage
	for _, msg := range m.messages {
		if msg.ProductID == productID {
			out = append(out, msg)
		}
	}
	return out, nil
}

// memFavorites is an in-memory domain.FavoriteRepository
type memFavorites struct {
	mu  sync.Mutex
	ids []string
}

func (m *memFavorites) Toggle(productID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range m.ids {
		if id == productID {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			return false, nil
		}
	}
	m.ids = append(m.ids, productID)
	return true, nil
}

func (m *memFavorites) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out, nil
}

func (m *memFavorites) Contains(productID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.ids {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

// memSessions is an in-memory domain.SessionRepository
type memSessions struct {
	mu      sync.Mutex
	current *domain.User
}

func (m *memSessions) Save(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &u
	return nil
}

func (m *memSessions) Current() (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *m.current, nil
}

func (m *memSessions) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}
