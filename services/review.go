package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
	"go-marketplace/store"
)

// ReviewService maintains product reviews and keeps the product's rating
// equal to the arithmetic mean of current review ratings.
type ReviewService struct {
	users    store.UserStore
	products store.ProductStore
	now      func() time.Time
}

// NewReviewService creates a ReviewService.
func NewReviewService(users store.UserStore, products store.ProductStore) *ReviewService {
	return &ReviewService{users: users, products: products, now: time.Now}
}

// Add appends a review. One review per user per product.
func (s *ReviewService) Add(ctx context.Context, productID, userID primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if product.Status == models.ProductDeleted {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID.Hex())
	}
	if _, ok := product.ReviewBy(userID); ok {
		return nil, ErrAlreadyReviewed
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	review := models.Review{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Name:      user.Username,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now().UTC(),
	}
	reviews := append(product.Reviews, review)

	if err := s.products.SetReviews(ctx, productID, reviews, models.MeanRating(reviews), len(reviews)); err != nil {
		return nil, mapStoreErr(err)
	}
	return &review, nil
}

// Update replaces the rating and comment of an existing review. Only the
// review's author or an administrator may update it.
func (s *ReviewService) Update(ctx context.Context, productID, reviewID, callerID primitive.ObjectID, callerRole models.Role, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return mapStoreErr(err)
	}

	reviews := append([]models.Review(nil), product.Reviews...)
	for i := range reviews {
		if reviews[i].ID != reviewID {
			continue
		}
		if reviews[i].UserID != callerID && callerRole != models.RoleAdministrator {
			return ErrForbidden
		}
		reviews[i].Rating = rating
		reviews[i].Comment = comment
		return mapStoreErr(s.products.SetReviews(ctx, productID, reviews, models.MeanRating(reviews), len(reviews)))
	}
	return fmt.Errorf("%w: review %s", ErrNotFound, reviewID.Hex())
}

// Delete removes a review and recomputes the mean; deleting the last review
// resets the rating to 0.
func (s *ReviewService) Delete(ctx context.Context, productID, reviewID, callerID primitive.ObjectID, callerRole models.Role) error {
	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return mapStoreErr(err)
	}

	kept := make([]models.Review, 0, len(product.Reviews))
	found := false
	for _, review := range product.Reviews {
		if review.ID == reviewID {
			if review.UserID != callerID && callerRole != models.RoleAdministrator {
				return ErrForbidden
			}
			found = true
			continue
		}
		kept = append(kept, review)
	}
	if !found {
		return fmt.Errorf("%w: review %s", ErrNotFound, reviewID.Hex())
	}
	return mapStoreErr(s.products.SetReviews(ctx, productID, kept, models.MeanRating(kept), len(kept)))
}
