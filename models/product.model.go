package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStatus is the listing state of a product. Deletion is logical:
// products referenced from historical orders are never removed physically.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductDeleted  ProductStatus = "deleted"
)

// Review is a single customer review. One review per user per product.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Discount is a seller-defined percentage discount window.
type Discount struct {
	Percentage float64   `bson:"percentage" json:"percentage"`
	StartDate  time.Time `bson:"start_date" json:"start_date"`
	EndDate    time.Time `bson:"end_date" json:"end_date"`
}

// Product represents a sellable catalog entry.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	Seller      primitive.ObjectID `bson:"seller" json:"seller"`
	Images      []string           `bson:"images" json:"images"`
	Stock       int                `bson:"stock" json:"stock"`
	Rating      float64            `bson:"rating" json:"rating"`
	NumReviews  int                `bson:"num_reviews" json:"num_reviews"`
	Reviews     []Review           `bson:"reviews" json:"reviews"`
	Discounts   []Discount         `bson:"discounts" json:"discounts"`
	Status      ProductStatus      `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Purchasable reports whether the product can be added to carts and ordered.
func (p *Product) Purchasable() bool {
	return p.Status == ProductActive
}

// ReviewBy returns the review left by the given user, if any.
func (p *Product) ReviewBy(userID primitive.ObjectID) (Review, bool) {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return r, true
		}
	}
	return Review{}, false
}

// MeanRating is the arithmetic mean of the given review ratings, 0 when empty.
func MeanRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
