package repository

import (
	"errors"
	"testing"

	"github.com/fasterr/marketplace/internal/domain"
)

func TestChatAppendAndOrder(t *testing.T) {
	repo := NewStoreChats(newMemStore(), nil)

	msgs := []domain.ChatMessage{
		{ID: "m2", ProductID: "p1", SenderID: "u1", Text: "second", CreatedAt: 200},
		{ID: "m1", ProductID: "p1", SenderID: "u1", Text: "first", CreatedAt: 100},
		{ID: "m3", ProductID: "p2", SenderID: "u1", Text: "other thread", CreatedAt: 150},
	}
	for _, m := range msgs {
		if err := repo.Append(m); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	thread, err := repo.ListByProduct("p1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(thread) != 2 || thread[0].ID != "m1" || thread[1].ID != "m2" {
		t.Fatalf("expected chronological order m1,m2, got %v", thread)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	repo := NewStoreChats(newMemStore(), nil)
	err := repo.Append(domain.ChatMessage{ID: "m1", ProductID: "p1", SenderID: "u1"})
	if !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestChatAttachmentOnlyMessage(t *testing.T) {
	repo := NewStoreChats(newMemStore(), nil)
	err := repo.Append(domain.ChatMessage{ID: "m1", ProductID: "p1", SenderID: "u1", Attachment: "https://img/x.jpg"})
	if err != nil {
		t.Fatalf("attachment-only message should be valid: %v", err)
	}

	err = repo.Append(domain.ChatMessage{ID: "m2", ProductID: "p1", SenderID: "u1", Location: &domain.GeoPoint{Lat: 19.07, Lng: 72.87}})
	if err != nil {
		t.Fatalf("location-only message should be valid: %v", err)
	}
}

func TestReviewOrderNewestFirst(t *testing.T) {
	repo := NewStoreReviews(newMemStore(), nil)

	reviews := []domain.Review{
		{ID: "r1", SellerID: "s1", BuyerID: "b1", Rating: 4, CreatedAt: 100},
		{ID: "r2", SellerID: "s1", BuyerID: "b1", Rating: 5, CreatedAt: 300},
		{ID: "r3", SellerID: "s2", BuyerID: "b1", Rating: 3, CreatedAt: 200},
	}
	for _, r := range reviews {
		if err := repo.Add(r); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	out, err := repo.ListBySeller("s1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(out) != 2 || out[0].ID != "r2" || out[1].ID != "r1" {
		t.Fatalf("expected newest first r2,r1, got %v", out)
	}
}

func TestReviewValidation(t *testing.T) {
	repo := NewStoreReviews(newMemStore(), nil)

	if err := repo.Add(domain.Review{ID: "r1", SellerID: "s1", BuyerID: "b1", Rating: 0}); err == nil {
		t.Fatalf("expected rating 0 to be rejected")
	}
	if err := repo.Add(domain.Review{ID: "r2", SellerID: "s1", Rating: 4}); err == nil {
		t.Fatalf("expected missing buyer to be rejected")
	}
}

func TestFavoriteToggleRoundTrip(t *testing.T) {
	repo := NewStoreFavorites(newMemStore(), nil)

	on, err := repo.Toggle("p1")
	if err != nil || !on {
		t.Fatalf("first toggle: on=%v err=%v", on, err)
	}
	if has, _ := repo.Contains("p1"); !has {
		t.Fatalf("expected p1 favorited")
	}

	off, err := repo.Toggle("p1")
	if err != nil || off {
		t.Fatalf("second toggle: on=%v err=%v", off, err)
	}
	if ids, _ := repo.List(); len(ids) != 0 {
		t.Fatalf("expected empty favorites, got %v", ids)
	}
}

func TestFavoriteOrderPreserved(t *testing.T) {
	repo := NewStoreFavorites(newMemStore(), nil)
	for _, id := range []string{"p1", "p2", "p3"} {
		if _, err := repo.Toggle(id); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
	}
	if _, err := repo.Toggle("p2"); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	ids, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p3" {
		t.Fatalf("expected p1,p3 got %v", ids)
	}
}

func TestSessionLifecycle(t *testing.T) {
	repo := NewStoreSession(newMemStore(), nil)

	if _, err := repo.Current(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("guest should read as not found, got %v", err)
	}

	user := domain.NewUser("u1", "Priya Sharma")
	if err := repo.Save(user); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := repo.Current()
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if got.ID != "u1" || got.Email != "priya.sharma@example.com" {
		t.Fatalf("unexpected session user %+v", got)
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := repo.Current(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cleared session should read as not found, got %v", err)
	}
}
