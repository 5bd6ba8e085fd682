// Package seed builds the deterministic demo catalog used on first run.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/fasterr/marketplace/internal/domain"
)

// DefaultCount is the number of generated listings appended to the static set
const DefaultCount = 200

// Locations in "Area, City, Region" format so the location filter has
// substrings to match at every granularity.
var locations = []string{
	"Manhattan, New York, NY", "Brooklyn, New York, NY", "Queens, New York, NY",
	"Downtown, Los Angeles, CA", "Hollywood, Los Angeles, CA", "Venice, Los Angeles, CA",
	"Loop, Chicago, IL", "Lincoln Park, Chicago, IL",
	"Downtown, Houston, TX", "Montrose, Houston, TX",
	"Downtown, Phoenix, AZ", "Center City, Philadelphia, PA",
	"Alamo Heights, San Antonio, TX", "La Jolla, San Diego, CA",
	"Uptown, Dallas, TX", "Silicon Valley, San Jose, CA",
	"Downtown, Austin, TX", "Riverside, Jacksonville, FL",
}

var items = []string{
	"iPhone 13", "Samsung Galaxy S21", "MacBook Air", "Sony Headphones",
	"Leather Sofa", "Dining Table", "Office Chair", "Gaming PC",
	"Mountain Bike", "Road Bike", "Toyota Camry", "Honda Civic",
	"Nike Sneakers", "Vintage Jacket", "Canon Camera", "Guitar",
	"Digital Watch", "Smart TV", "Bookshelf", "Microwave",
	"2BHK Apartment", "Commercial Office Space", "Persian Cat", "Labrador Puppy",
}

var adjectives = []string{
	"Vintage", "Brand New", "Slightly Used", "Refurbished", "Custom",
	"Rare", "Modern", "Classic", "Premium", "Budget",
}

// Dataset returns the hand-authored listings plus count generated ones. The
// generator runs from a fixed seed, so two calls with the same reference time
// produce identical data.
func Dataset(count int, now time.Time) []domain.Product {
	products := static(now)
	products = append(products, generated(count, now)...)
	return products
}

func static(now time.Time) []domain.Product {
	ms := now.UnixMilli()
	return []domain.Product{
		{
			ID:          "1",
			Title:       "Vintage Film Camera",
			Price:       12000,
			Description: "A beautiful 35mm film camera in excellent condition. tested and working. Comes with a 50mm lens.",
			Category:    domain.CategoryElectronics,
			Condition:   domain.ConditionGood,
			Image:       "https://picsum.photos/id/250/800/600",
			Images:      []string{"https://picsum.photos/id/250/800/600", "https://picsum.photos/id/251/800/600", "https://picsum.photos/id/252/800/600"},
			SellerID:    "demo_user",
			SellerName:  "John Doe",
			CreatedAt:   ms,
			Location:    "Manhattan, New York, NY",
			Status:      domain.StatusActive,
		},
		{
			ID:          "2",
			Title:       "Modern Lounge Chair",
			Price:       6500,
			Description: "Mid-century modern style chair. distinctive wooden legs and grey fabric. Barely used.",
			Category:    domain.CategoryFurniture,
			Condition:   domain.ConditionLikeNew,
			Image:       "https://picsum.photos/id/1060/800/600",
			Images:      []string{"https://picsum.photos/id/1060/800/600", "https://picsum.photos/id/1062/800/600"},
			SellerID:    "jane_smith",
			SellerName:  "Jane Smith",
			CreatedAt:   ms - 100000,
			Location:    "San Francisco, CA",
			Status:      domain.StatusActive,
		},
		{
			ID:          "3",
			Title:       "Mountain Bike",
			Price:       15000,
			Description: "Reliable mountain bike for trails. 21 speed, disc brakes. Recently serviced.",
			Category:    domain.CategoryBikes,
			Condition:   domain.ConditionGood,
			Image:       "https://picsum.photos/id/146/800/600",
			Images:      []string{"https://picsum.photos/id/146/800/600"},
			SellerID:    "mike_b",
			SellerName:  "Mike B",
			CreatedAt:   ms - 200000,
			Location:    "Downtown, Denver, CO",
			Status:      domain.StatusActive,
		},
		{
			ID:          "4",
			Title:       "Leather Jacket",
			Price:       4000,
			Description: "Genuine leather jacket, vintage look. Size M. Very warm and stylish.",
			Category:    domain.CategoryFashion,
			Condition:   domain.ConditionGood,
			Image:       "https://picsum.photos/id/1005/800/600",
			Images:      []string{"https://picsum.photos/id/1005/800/600", "https://picsum.photos/id/1006/800/600"},
			SellerID:    "sara_k",
			SellerName:  "Sara K",
			CreatedAt:   ms - 300000,
			Location:    "Austin, TX",
			Status:      domain.StatusSold,
		},
	}
}

func generated(count int, now time.Time) []domain.Product {
	rng := rand.New(rand.NewSource(42))
	categories := domain.Categories()
	conditions := domain.Conditions()

	products := make([]domain.Product, 0, count)
	for i := 0; i < count; i++ {
		item := items[rng.Intn(len(items))]
		adj := adjectives[rng.Intn(len(adjectives))]
		category := categories[rng.Intn(len(categories))]
		condition := conditions[rng.Intn(len(conditions))]
		location := locations[rng.Intn(len(locations))]

		// Random age within the last 60 days
		ageMs := int64(rng.Intn(60 * 24 * 60 * 60 * 1000))

		status := domain.StatusActive
		if rng.Float64() > 0.9 {
			status = domain.StatusSold
		}

		image := fmt.Sprintf("https://picsum.photos/seed/%d/800/600", i)
		seller := rng.Intn(50)

		products = append(products, domain.Product{
			ID:          fmt.Sprintf("dummy_%d", i),
			Title:       fmt.Sprintf("%s %s", adj, item),
			Price:       float64(rng.Intn(100000) + 500),
			Description: fmt.Sprintf("Great deal on this %s %s. Only used for a short time. Located in %s. Contact me for more details!", strings.ToLower(adj), item, location),
			Category:    category,
			Condition:   condition,
			Image:       image,
			Images:      []string{image, fmt.Sprintf("https://picsum.photos/seed/%dextra/800/600", i)},
			SellerID:    fmt.Sprintf("seller_%d", seller),
			SellerName:  fmt.Sprintf("User_%d", seller),
			CreatedAt:   now.UnixMilli() - ageMs,
			Location:    location,
			Status:      status,
		})
	}
	return products
}
