// Package store defines persistence interfaces for marketplace data and
// their MongoDB and in-memory implementations.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
)

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned by DecrementStock when the product's
	// stock is below the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateEmail is returned when creating a user with an email
	// already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrStaleStatus is returned by UpdateOrderStatus when the order's
	// current status no longer matches the expected one.
	ErrStaleStatus = errors.New("order status changed concurrently")
)

// OwnedOrder pairs an embedded order with its owning user, for seller and
// administrator views that cut across users.
type OwnedOrder struct {
	UserID    primitive.ObjectID `json:"user_id"`
	UserEmail string             `json:"user_email"`
	Order     models.Order       `json:"order"`
}

// ProductFilter narrows product listings. Zero-value fields are ignored.
type ProductFilter struct {
	Category        primitive.ObjectID
	Seller          primitive.ObjectID
	IncludeInactive bool
	WithDiscounts   bool
}

// UserStore persists user documents, including their embedded cart, order
// history and wishlist.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserRole(ctx context.Context, userID primitive.ObjectID, role models.Role) error
	SetUserActive(ctx context.Context, userID primitive.ObjectID, active bool) error

	SetCart(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) error

	// AppendOrderAndClearCart pushes the order onto the user's history and
	// empties the cart in one atomic document update.
	AppendOrderAndClearCart(ctx context.Context, userID primitive.ObjectID, order models.Order) error

	OrderByID(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error)

	// FindOrder locates an order by id across all users.
	FindOrder(ctx context.Context, orderID primitive.ObjectID) (*OwnedOrder, error)

	// UpdateOrderStatus moves an order from one status to another with a
	// compare-and-set on the current status.
	UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, from, to models.OrderStatus) error

	// OrdersByProducts returns every order containing at least one of the
	// given products, newest first.
	OrdersByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]OwnedOrder, error)

	AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error
	RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error
}

// ProductStore persists catalog products.
type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) (primitive.ObjectID, error)
	ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	SoftDeleteProduct(ctx context.Context, id primitive.ObjectID) error

	// DecrementStock atomically decrements stock by qty only if the product
	// is active and its stock is at least qty. Returns ErrInsufficientStock
	// when the floor check fails, ErrNotFound when no such sellable product
	// exists.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error

	// RestoreStock adds qty back to the product's stock. Used as the
	// compensating write when a later checkout step fails.
	RestoreStock(ctx context.Context, id primitive.ObjectID, qty int) error

	SetStock(ctx context.Context, id primitive.ObjectID, stock int) error
	SetReviews(ctx context.Context, id primitive.ObjectID, reviews []models.Review, rating float64, numReviews int) error
	AddDiscount(ctx context.Context, id primitive.ObjectID, discount models.Discount) error
}

// CategoryStore persists catalog categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) (primitive.ObjectID, error)
	CategoryByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListSubcategories(ctx context.Context, parentID primitive.ObjectID) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

// Store aggregates the three collections behind one handle.
type Store interface {
	UserStore
	ProductStore
	CategoryStore
}
