package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func candidateResponse(text string) string {
	out, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return string(out)
}

func TestGenerateDescriptionWithoutKeyFallsBack(t *testing.T) {
	c := NewClient(Config{}, nil)
	got := c.GenerateDescription(context.Background(), "Bike", "Bikes", "21 gears")
	if got != FallbackDescription {
		t.Fatalf("expected fallback without API key, got %q", got)
	}
}

func TestGenerateDescriptionSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Write([]byte(candidateResponse("A sturdy bike in great shape.")))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test"}, nil)
	got := c.GenerateDescription(context.Background(), "Bike", "Bikes", "21 gears")
	if got != "A sturdy bike in great shape." {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestGenerateDescriptionServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test"}, nil)
	got := c.GenerateDescription(context.Background(), "Bike", "Bikes", "21 gears")
	if got != FallbackDescription {
		t.Fatalf("expected fallback on server error, got %q", got)
	}
}

func TestParseQuerySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateResponse(`{"category":"Bikes","maxPrice":20000,"sortBy":"price_asc"}`)))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test"}, nil)
	sf := c.ParseQuery(context.Background(), "cheap bikes under 20000")
	if sf == nil {
		t.Fatalf("expected a smart filter")
	}
	if sf.Category == nil || *sf.Category != "Bikes" {
		t.Fatalf("category not parsed: %+v", sf)
	}
	if sf.MaxPrice == nil || *sf.MaxPrice != 20000 {
		t.Fatalf("max price not parsed: %+v", sf)
	}
	if sf.SortBy == nil || *sf.SortBy != "price_asc" {
		t.Fatalf("sort not parsed: %+v", sf)
	}
	if sf.MinPrice != nil || sf.Location != nil {
		t.Fatalf("absent fields should stay nil: %+v", sf)
	}
}

func TestParseQueryMalformedJSONReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateResponse("not json at all")))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test"}, nil)
	if sf := c.ParseQuery(context.Background(), "anything"); sf != nil {
		t.Fatalf("malformed payload should yield nil, got %+v", sf)
	}
}

func TestParseQueryWithoutKeyReturnsNil(t *testing.T) {
	c := NewClient(Config{}, nil)
	if sf := c.ParseQuery(context.Background(), "anything"); sf != nil {
		t.Fatalf("expected nil without API key, got %+v", sf)
	}
}
