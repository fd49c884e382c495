package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-marketplace/models"
	"go-marketplace/store"
)

// PaymentMethods is the closed set of accepted payment method tags.
var PaymentMethods = map[string]bool{
	"card":   true,
	"paypal": true,
	"bank":   true,
}

// CheckoutService converts a user's cart into a persisted order.
//
// The write sequence is: one conditional decrement per line item (decrement
// stock by n only if stock >= n), then a single document update on the user
// that appends the order and clears the cart. Any failure after a decrement
// triggers compensating stock restores; a failed restore is surfaced as
// ErrCheckoutInconsistent and logged for operator remediation.
type CheckoutService struct {
	users    store.UserStore
	products store.ProductStore
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(users store.UserStore, products store.ProductStore, log *zap.SugaredLogger) *CheckoutService {
	return &CheckoutService{
		users:    users,
		products: products,
		log:      log,
		now:      time.Now,
	}
}

// PlaceOrder creates an order from the caller's current cart, debiting stock
// for every line item, or fails cleanly leaving catalog and cart untouched.
// Unit prices are snapshotted from the catalog at this moment and never
// recomputed afterwards.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, shipping models.Address, paymentMethod string) (*models.Order, error) {
	if !PaymentMethods[paymentMethod] {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, paymentMethod)
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if len(user.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	// Snapshot price and name for every line item before touching stock.
	items := make([]models.OrderItem, 0, len(user.Cart))
	total := 0.0
	for _, line := range user.Cart {
		product, err := s.products.ProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, mapStoreErr(err)
		}
		if !product.Purchasable() {
			return nil, fmt.Errorf("%w: product %s is no longer available", ErrNotFound, product.Name)
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
		total += product.Price * float64(line.Quantity)
	}

	// Debit stock with per-product conditional decrements. The decrement is
	// the authoritative check: two concurrent checkouts over the same unit
	// cannot both pass the stock floor.
	debited := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.rollback(ctx, userID, debited)
			if errors.Is(err, store.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, item.Name)
			}
			return nil, mapStoreErr(err)
		}
		debited = append(debited, item)
	}

	order := models.Order{
		ID:              primitive.NewObjectID(),
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: shipping,
		PaymentMethod:   paymentMethod,
		Status:          models.OrderPending,
		CreatedAt:       s.now().UTC(),
	}

	// History append and cart clear are one atomic document write, so the
	// order either exists with an empty cart or not at all.
	if err := s.users.AppendOrderAndClearCart(ctx, userID, order); err != nil {
		if rbErr := s.restoreAll(ctx, debited); rbErr != nil {
			s.log.Errorw("checkout inconsistent: stock debited, order not persisted, restore failed",
				"user_id", userID.Hex(), "order_id", order.ID.Hex(), "error", err, "restore_error", rbErr)
			return nil, fmt.Errorf("%w: %v", ErrCheckoutInconsistent, rbErr)
		}
		return nil, mapStoreErr(err)
	}

	return &order, nil
}

// rollback restores stock for items already debited during a failed
// checkout. Restore failures here make the checkout inconsistent in the
// same way persistence failures do; they are logged loudly.
func (s *CheckoutService) rollback(ctx context.Context, userID primitive.ObjectID, debited []models.OrderItem) {
	if err := s.restoreAll(ctx, debited); err != nil {
		s.log.Errorw("checkout rollback incomplete", "user_id", userID.Hex(), "error", err)
	}
}

func (s *CheckoutService) restoreAll(ctx context.Context, debited []models.OrderItem) error {
	var firstErr error
	for _, item := range debited {
		if err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("restore %s: %w", item.ProductID.Hex(), err)
		}
	}
	return firstErr
}
