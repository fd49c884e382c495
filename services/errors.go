// Package services holds the marketplace business rules: cart management,
// the checkout engine, review aggregation, catalog and order operations.
package services

import "errors"

var (
	// ErrNotFound covers missing users, products, categories, orders and
	// reviews, as well as products no longer sellable.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart is returned by PlaceOrder when the cart has no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientStock is returned when a requested quantity exceeds a
	// product's current stock. Wrapped with the offending product's name.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrAlreadyReviewed is returned when a user reviews a product twice.
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	// ErrInvalidStatusTransition is returned for order status moves outside
	// the pending -> processing -> shipped -> delivered lifecycle.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrValidation covers malformed or out-of-range request fields.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when the caller's role or ownership is
	// insufficient for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrCheckoutInconsistent is returned when stock was debited but the
	// compensating restore also failed. Requires operator remediation and
	// is never reported as success.
	ErrCheckoutInconsistent = errors.New("checkout left inconsistent stock")
)
