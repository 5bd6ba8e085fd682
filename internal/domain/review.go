package domain

import "fmt"

// Review is an append-only rating of a seller by a buyer. BuyerName is a
// snapshot taken when the review was written.
type Review struct {
	ID        string `json:"id"`
	SellerID  string `json:"sellerId"`
	BuyerID   string `json:"buyerId"`
	BuyerName string `json:"buyerName"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt int64  `json:"createdAt"`
}

// Validate checks the rating bounds; reviews are never edited after this.
func (r *Review) Validate() error {
	if r.SellerID == "" || r.BuyerID == "" {
		return fmt.Errorf("review needs both seller and buyer ids")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", r.Rating)
	}
	return nil
}

// ReviewRepository defines data access for seller reviews
type ReviewRepository interface {
	Add(r Review) error
	// ListBySeller returns the seller's reviews newest-first.
	ListBySeller(sellerID string) ([]Review, error)
}
