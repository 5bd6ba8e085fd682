package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fasterr/marketplace/internal/domain"
)

// memMirror is an in-memory domain.CatalogMirror for handler tests
type memMirror struct {
	products []domain.Product
	nextID   int
}

func (m *memMirror) List() ([]domain.Product, error) {
	return m.products, nil
}

func (m *memMirror) GetByID(id string) (domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

func (m *memMirror) Create(p domain.Product) (string, error) {
	m.nextID++
	p.ID = fmt.Sprintf("gen-%d", m.nextID)
	m.products = append([]domain.Product{p}, m.products...)
	return p.ID, nil
}

func TestProductsList(t *testing.T) {
	mirror := &memMirror{products: []domain.Product{
		{ID: "p1", Title: "Chair", Images: []string{"https://img/1.jpg"}},
	}}
	h := NewProductsHandler(mirror, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(out) != 1 || out[0].ID != "p1" {
		t.Fatalf("unexpected body %v", out)
	}
}

func TestProductsListEmptyIsJSONArray(t *testing.T) {
	h := NewProductsHandler(&memMirror{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("empty catalog must encode as [], got %q", body)
	}
}

func TestProductsGetNotFound(t *testing.T) {
	h := NewProductsHandler(&memMirror{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/ghost", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Product not found") {
		t.Fatalf("expected error body, got %q", rec.Body.String())
	}
}

func TestProductsCreate(t *testing.T) {
	mirror := &memMirror{}
	h := NewProductsHandler(mirror, nil)

	body := `{"title":"Bike","price":15000,"images":["https://img/1.jpg","https://img/2.jpg"],"sellerId":"u1","sellerName":"Alice"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp CreateProductResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !resp.Success || resp.ID == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	stored, err := mirror.GetByID(resp.ID)
	if err != nil {
		t.Fatalf("created product not stored: %v", err)
	}
	if stored.Image != "https://img/1.jpg" || len(stored.Images) != 2 {
		t.Fatalf("image fields wrong: %+v", stored)
	}
}

func TestProductsCreateFallsBackToSingleImage(t *testing.T) {
	mirror := &memMirror{}
	h := NewProductsHandler(mirror, nil)

	body := `{"title":"Bike","price":100,"image":"https://img/only.jpg"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if mirror.products[0].Images[0] != "https://img/only.jpg" {
		t.Fatalf("single image not promoted: %+v", mirror.products[0])
	}
}

func TestProductsCreateValidation(t *testing.T) {
	h := NewProductsHandler(&memMirror{}, nil)

	cases := []string{
		`{"price":100,"images":["https://img/1.jpg"]}`,
		`{"title":"Bike","price":-5,"images":["https://img/1.jpg"]}`,
		`{"title":"Bike","price":100}`,
		`{not json`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestProductsMethodNotAllowed(t *testing.T) {
	h := NewProductsHandler(&memMirror{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
