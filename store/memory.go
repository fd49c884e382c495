package store

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
)

// Memory is an in-process Store used by tests and local development runs.
// A single mutex stands in for MongoDB's per-document atomicity, which makes
// the conditional stock decrement exact.
type Memory struct {
	mu         sync.Mutex
	users      map[primitive.ObjectID]*models.User
	products   map[primitive.ObjectID]*models.Product
	categories map[primitive.ObjectID]*models.Category
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:      make(map[primitive.ObjectID]*models.User),
		products:   make(map[primitive.ObjectID]*models.Product),
		categories: make(map[primitive.ObjectID]*models.Category),
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Cart = append([]models.CartItem(nil), u.Cart...)
	c.OrderHistory = append([]models.Order(nil), u.OrderHistory...)
	c.Wishlist = append([]primitive.ObjectID(nil), u.Wishlist...)
	return &c
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Reviews = append([]models.Review(nil), p.Reviews...)
	c.Discounts = append([]models.Discount(nil), p.Discounts...)
	return &c
}

// --- users ---

func (m *Memory) CreateUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, ErrDuplicateEmail
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = cloneUser(user)
	return user.ID, nil
}

func (m *Memory) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, *cloneUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (m *Memory) SetUserRole(_ context.Context, userID primitive.ObjectID, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.Role = role
	return nil
}

func (m *Memory) SetUserActive(_ context.Context, userID primitive.ObjectID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.IsActive = active
	return nil
}

func (m *Memory) SetCart(_ context.Context, userID primitive.ObjectID, items []models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.Cart = append([]models.CartItem(nil), items...)
	return nil
}

func (m *Memory) AppendOrderAndClearCart(_ context.Context, userID primitive.ObjectID, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.OrderHistory = append(user.OrderHistory, order)
	user.Cart = nil
	return nil
}

func (m *Memory) OrderByID(_ context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	for _, order := range user.OrderHistory {
		if order.ID == orderID {
			o := order
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindOrder(_ context.Context, orderID primitive.ObjectID) (*OwnedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owned := m.findOrderLocked(orderID); owned != nil {
		return owned, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) findOrderLocked(orderID primitive.ObjectID) *OwnedOrder {
	for _, user := range m.users {
		for _, order := range user.OrderHistory {
			if order.ID == orderID {
				return &OwnedOrder{UserID: user.ID, UserEmail: user.Email, Order: order}
			}
		}
	}
	return nil
}

func (m *Memory) UpdateOrderStatus(_ context.Context, orderID primitive.ObjectID, from, to models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		for i := range user.OrderHistory {
			if user.OrderHistory[i].ID != orderID {
				continue
			}
			if user.OrderHistory[i].Status != from {
				return ErrStaleStatus
			}
			user.OrderHistory[i].Status = to
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) OrdersByProducts(_ context.Context, productIDs []primitive.ObjectID) ([]OwnedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make(map[primitive.ObjectID]bool, len(productIDs))
	for _, id := range productIDs {
		ids[id] = true
	}

	var orders []OwnedOrder
	for _, user := range m.users {
		for _, order := range user.OrderHistory {
			if order.ContainsProduct(ids) {
				orders = append(orders, OwnedOrder{UserID: user.ID, UserEmail: user.Email, Order: order})
			}
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Order.CreatedAt.After(orders[j].Order.CreatedAt)
	})
	return orders, nil
}

func (m *Memory) AddToWishlist(_ context.Context, userID, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	for _, id := range user.Wishlist {
		if id == productID {
			return nil
		}
	}
	user.Wishlist = append(user.Wishlist, productID)
	return nil
}

func (m *Memory) RemoveFromWishlist(_ context.Context, userID, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	kept := user.Wishlist[:0]
	for _, id := range user.Wishlist {
		if id != productID {
			kept = append(kept, id)
		}
	}
	user.Wishlist = kept
	return nil
}

// --- products ---

func (m *Memory) CreateProduct(_ context.Context, product *models.Product) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	m.products[product.ID] = cloneProduct(product)
	return product.ID, nil
}

func (m *Memory) ProductByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProduct(product), nil
}

func (m *Memory) ListProducts(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var products []models.Product
	for _, product := range m.products {
		if filter.IncludeInactive {
			if product.Status == models.ProductDeleted {
				continue
			}
		} else if product.Status != models.ProductActive {
			continue
		}
		if !filter.Category.IsZero() && product.Category != filter.Category {
			continue
		}
		if !filter.Seller.IsZero() && product.Seller != filter.Seller {
			continue
		}
		if filter.WithDiscounts && len(product.Discounts) == 0 {
			continue
		}
		products = append(products, *cloneProduct(product))
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (m *Memory) UpdateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = product.Name
	existing.Description = product.Description
	existing.Price = product.Price
	existing.Category = product.Category
	existing.Images = append([]string(nil), product.Images...)
	existing.Status = product.Status
	return nil
}

func (m *Memory) SoftDeleteProduct(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	product.Status = models.ProductDeleted
	return nil
}

func (m *Memory) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok || !product.Purchasable() {
		return ErrNotFound
	}
	if product.Stock < qty {
		return ErrInsufficientStock
	}
	product.Stock -= qty
	return nil
}

func (m *Memory) RestoreStock(_ context.Context, id primitive.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	product.Stock += qty
	return nil
}

func (m *Memory) SetStock(_ context.Context, id primitive.ObjectID, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	product.Stock = stock
	return nil
}

func (m *Memory) SetReviews(_ context.Context, id primitive.ObjectID, reviews []models.Review, rating float64, numReviews int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	product.Reviews = append([]models.Review(nil), reviews...)
	product.Rating = rating
	product.NumReviews = numReviews
	return nil
}

func (m *Memory) AddDiscount(_ context.Context, id primitive.ObjectID, discount models.Discount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	product.Discounts = append(product.Discounts, discount)
	return nil
}

// --- categories ---

func (m *Memory) CreateCategory(_ context.Context, category *models.Category) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	c := *category
	m.categories[category.ID] = &c
	return category.ID, nil
}

func (m *Memory) CategoryByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *category
	return &c, nil
}

func (m *Memory) CategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, category := range m.categories {
		if category.Slug == slug {
			c := *category
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListCategories(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	categories := make([]models.Category, 0, len(m.categories))
	for _, category := range m.categories {
		categories = append(categories, *category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].FeaturedOrder < categories[j].FeaturedOrder
	})
	return categories, nil
}

func (m *Memory) ListSubcategories(_ context.Context, parentID primitive.ObjectID) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var categories []models.Category
	for _, category := range m.categories {
		if category.Parent != nil && *category.Parent == parentID {
			categories = append(categories, *category)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].FeaturedOrder < categories[j].FeaturedOrder
	})
	return categories, nil
}

func (m *Memory) UpdateCategory(_ context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.categories[category.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = category.Name
	existing.Description = category.Description
	existing.Slug = category.Slug
	existing.Parent = category.Parent
	existing.IsActive = category.IsActive
	existing.FeaturedOrder = category.FeaturedOrder
	return nil
}

func (m *Memory) DeleteCategory(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}
	delete(m.categories, id)
	for childID, category := range m.categories {
		if category.Parent != nil && *category.Parent == id {
			delete(m.categories, childID)
		}
	}
	return nil
}
