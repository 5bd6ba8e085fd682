package domain

import "testing"

func validProduct() Product {
	return Product{
		ID:        "p1",
		Title:     "Chair",
		Price:     100,
		Category:  CategoryFurniture,
		Condition: ConditionGood,
		Image:     "https://img/1.jpg",
		Images:    []string{"https://img/1.jpg", "https://img/2.jpg"},
		SellerID:  "u1",
		CreatedAt: 1700000000000,
		Status:    StatusActive,
	}
}

func TestProductValidate(t *testing.T) {
	p := validProduct()
	if err := p.Validate(); err != nil {
		t.Fatalf("valid product rejected: %v", err)
	}

	p = validProduct()
	p.Price = -1
	if err := p.Validate(); err == nil {
		t.Fatalf("negative price accepted")
	}

	p = validProduct()
	p.Images = nil
	if err := p.Validate(); err == nil {
		t.Fatalf("product without images accepted")
	}

	p = validProduct()
	p.Image = "https://img/other.jpg"
	if err := p.Validate(); err == nil {
		t.Fatalf("primary image must match the first of images")
	}

	p = validProduct()
	p.Title = ""
	if err := p.Validate(); err == nil {
		t.Fatalf("untitled product accepted")
	}
}

func TestNewUserDerivesEmailAndAvatar(t *testing.T) {
	u := NewUser("u1", "Priya Sharma")
	if u.Email != "priya.sharma@example.com" {
		t.Fatalf("unexpected email %q", u.Email)
	}
	if u.Avatar == "" {
		t.Fatalf("expected generated avatar URL")
	}
}
