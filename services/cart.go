package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
	"go-marketplace/store"
)

// CartService maintains the authoritative pending-purchase list for a user.
// Stock checks are optimistic: nothing is reserved until checkout, where the
// conditional decrement is authoritative.
type CartService struct {
	users    store.UserStore
	products store.ProductStore
}

// NewCartService creates a CartService.
func NewCartService(users store.UserStore, products store.ProductStore) *CartService {
	return &CartService{users: users, products: products}
}

// CartLine is one cart entry joined with its current product document.
type CartLine struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Get returns the user's cart with current product details. Lines whose
// product has since been deleted are skipped rather than failing the view.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) ([]CartLine, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	lines := make([]CartLine, 0, len(user.Cart))
	for _, item := range user.Cart {
		product, err := s.products.ProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if product.Status == models.ProductDeleted {
			continue
		}
		lines = append(lines, CartLine{Product: *product, Quantity: item.Quantity})
	}
	return lines, nil
}

// Add puts quantity units of a product into the cart. If the product is
// already present the quantities are merged, never duplicated.
func (s *CartService) Add(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return mapStoreErr(err)
	}
	if !product.Purchasable() {
		return fmt.Errorf("%w: product %s", ErrNotFound, productID.Hex())
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return mapStoreErr(err)
	}

	requested := quantity
	if line, ok := user.CartLine(productID); ok {
		requested += line.Quantity
	}
	if requested > product.Stock {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
	}

	merged := false
	for i := range user.Cart {
		if user.Cart[i].ProductID == productID {
			user.Cart[i].Quantity = requested
			merged = true
			break
		}
	}
	if !merged {
		user.Cart = append(user.Cart, models.CartItem{ProductID: productID, Quantity: quantity})
	}

	return s.users.SetCart(ctx, userID, user.Cart)
}

// SetQuantity replaces the quantity of an existing line item. Zero is not a
// removal; callers must use Remove.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1, use remove to drop a line", ErrValidation)
	}

	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return mapStoreErr(err)
	}
	if quantity > product.Stock {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return mapStoreErr(err)
	}

	for i := range user.Cart {
		if user.Cart[i].ProductID == productID {
			user.Cart[i].Quantity = quantity
			return s.users.SetCart(ctx, userID, user.Cart)
		}
	}
	return fmt.Errorf("%w: product %s not in cart", ErrNotFound, productID.Hex())
}

// Remove drops a line item. Removing an absent product is a no-op success.
func (s *CartService) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return mapStoreErr(err)
	}

	kept := make([]models.CartItem, 0, len(user.Cart))
	for _, item := range user.Cart {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	return s.users.SetCart(ctx, userID, kept)
}

// mapStoreErr lifts store sentinels into the service taxonomy.
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, store.ErrInsufficientStock):
		return fmt.Errorf("%w: %v", ErrInsufficientStock, err)
	default:
		return err
	}
}
