package domain

import (
	"fmt"
	"time"
)

// Category is one of the fixed classifieds categories
type Category string

const (
	CategoryMobiles        Category = "Mobiles"
	CategoryCars           Category = "Cars"
	CategoryBikes          Category = "Bikes"
	CategoryPropertiesSale Category = "Properties for Sale"
	CategoryPropertiesRent Category = "Properties for Rent"
	CategoryElectronics    Category = "Electronics & Appliances"
	CategoryFurniture      Category = "Furniture"
	CategoryFashion        Category = "Fashion"
	CategoryBooksSports    Category = "Books, Sports & Hobbies"
	CategoryPets           Category = "Pets"
	CategoryServices       Category = "Services"
	CategoryOther          Category = "Other"
)

// Categories returns every category in display order
func Categories() []Category {
	return []Category{
		CategoryMobiles, CategoryCars, CategoryBikes,
		CategoryPropertiesSale, CategoryPropertiesRent,
		CategoryElectronics, CategoryFurniture, CategoryFashion,
		CategoryBooksSports, CategoryPets, CategoryServices, CategoryOther,
	}
}

// Condition describes the wear state of a listed item
type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
	ConditionPoor    Condition = "Poor"
)

// Conditions returns every condition from best to worst
func Conditions() []Condition {
	return []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}
}

// Listing status values
const (
	StatusActive = "active"
	StatusSold   = "sold"
)

// Product represents a single classifieds listing.
// SellerName is a denormalized snapshot of the seller's display name at
// creation time; relations to other entities are by id only.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Condition   Condition `json:"condition"`
	Image       string    `json:"image"`
	Images      []string  `json:"images"`
	SellerID    string    `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	CreatedAt   int64     `json:"createdAt"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
}

// Validate checks the creation invariants: non-negative price, a non-empty
// image list whose first element is the primary image, and a known status.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product id is required")
	}
	if p.Title == "" {
		return fmt.Errorf("product title is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("product price must be non-negative, got %v", p.Price)
	}
	if len(p.Images) == 0 {
		return fmt.Errorf("product must have at least one image")
	}
	if p.Image != p.Images[0] {
		return fmt.Errorf("primary image must equal the first of images")
	}
	if p.Status != StatusActive && p.Status != StatusSold {
		return fmt.Errorf("unknown product status %q", p.Status)
	}
	return nil
}

// CreatedTime returns the creation timestamp as a time.Time
func (p *Product) CreatedTime() time.Time {
	return time.UnixMilli(p.CreatedAt)
}

// CatalogRepository defines data access for the local product catalog
type CatalogRepository interface {
	List() ([]Product, error)
	GetByID(id string) (Product, error)
	Create(p Product) error
	Update(p Product) error
	MarkSold(id, sellerID string) error
	ListBySeller(sellerID string) ([]Product, error)
}

// CatalogMirror defines the remote mirror of the product collection
type CatalogMirror interface {
	List() ([]Product, error)
	GetByID(id string) (Product, error)
	Create(p Product) (string, error)
}
