package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
	"go-marketplace/store"
)

// OrderService serves order history queries and role-gated status updates.
// Orders live embedded in their owner's user document; checkout owns their
// creation (CheckoutService).
type OrderService struct {
	users    store.UserStore
	products store.ProductStore
}

// NewOrderService creates an OrderService.
func NewOrderService(users store.UserStore, products store.ProductStore) *OrderService {
	return &OrderService{users: users, products: products}
}

// Orders returns the caller's order history.
func (s *OrderService) Orders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if user.OrderHistory == nil {
		return []models.Order{}, nil
	}
	return user.OrderHistory, nil
}

// Order returns a single order scoped to the caller.
func (s *OrderService) Order(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.users.OrderByID(ctx, userID, orderID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return order, nil
}

// UpdateStatus moves an order along the pending -> processing -> shipped ->
// delivered lifecycle (cancellation allowed pre-shipping). Administrators may
// update any order; sellers only orders containing their own products. The
// write is a compare-and-set on the current status. The second return value
// is the order owner's email, for notification sends.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, callerID primitive.ObjectID, callerRole models.Role, to models.OrderStatus) (*models.Order, string, error) {
	if !to.Valid() {
		return nil, "", fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}

	owned, err := s.users.FindOrder(ctx, orderID)
	if err != nil {
		return nil, "", mapStoreErr(err)
	}

	if callerRole != models.RoleAdministrator {
		sellerProducts, err := s.sellerProductIDs(ctx, callerID)
		if err != nil {
			return nil, "", err
		}
		if !owned.Order.ContainsProduct(sellerProducts) {
			return nil, "", ErrForbidden
		}
	}

	from := owned.Order.Status
	if !models.CanTransition(from, to) {
		return nil, "", fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
	}

	if err := s.users.UpdateOrderStatus(ctx, orderID, from, to); err != nil {
		if errors.Is(err, store.ErrStaleStatus) {
			return nil, "", fmt.Errorf("%w: order changed concurrently", ErrInvalidStatusTransition)
		}
		return nil, "", mapStoreErr(err)
	}

	order := owned.Order
	order.Status = to
	return &order, owned.UserEmail, nil
}

// SellerOrders returns every order containing at least one of the seller's
// products, newest first.
func (s *OrderService) SellerOrders(ctx context.Context, sellerID primitive.ObjectID) ([]store.OwnedOrder, error) {
	ids, err := s.sellerProductIDList(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []store.OwnedOrder{}, nil
	}
	orders, err := s.users.OrdersByProducts(ctx, ids)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if orders == nil {
		orders = []store.OwnedOrder{}
	}
	return orders, nil
}

// SellerStats summarizes a seller's catalog and orders.
type SellerStats struct {
	TotalProducts int     `json:"total_products"`
	TotalOrders   int     `json:"total_orders"`
	PendingOrders int     `json:"pending_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// Stats aggregates the seller dashboard figures. Revenue counts only the
// seller's own line items in delivered orders.
func (s *OrderService) Stats(ctx context.Context, sellerID primitive.ObjectID) (*SellerStats, error) {
	ids, err := s.sellerProductIDList(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	stats := &SellerStats{TotalProducts: len(ids)}
	if len(ids) == 0 {
		return stats, nil
	}

	owned := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		owned[id] = true
	}

	orders, err := s.users.OrdersByProducts(ctx, ids)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	for _, o := range orders {
		stats.TotalOrders++
		if o.Order.Status == models.OrderPending {
			stats.PendingOrders++
		}
		if o.Order.Status == models.OrderDelivered {
			for _, item := range o.Order.Items {
				if owned[item.ProductID] {
					stats.TotalRevenue += item.UnitPrice * float64(item.Quantity)
				}
			}
		}
	}
	return stats, nil
}

// AllOrders returns every order in the system, newest first. Administrator
// view; the capability gate keeps it off customer and seller routes.
func (s *OrderService) AllOrders(ctx context.Context) ([]store.OwnedOrder, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	orders := []store.OwnedOrder{}
	for _, user := range users {
		for _, order := range user.OrderHistory {
			orders = append(orders, store.OwnedOrder{UserID: user.ID, UserEmail: user.Email, Order: order})
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Order.CreatedAt.After(orders[j].Order.CreatedAt)
	})
	return orders, nil
}

// AdminStats summarizes the whole marketplace.
type AdminStats struct {
	TotalUsers    int     `json:"total_users"`
	TotalProducts int     `json:"total_products"`
	TotalOrders   int     `json:"total_orders"`
	PendingOrders int     `json:"pending_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// Stats for the administration dashboard. Revenue counts delivered orders
// only, same rule as the seller dashboard.
func (s *OrderService) MarketplaceStats(ctx context.Context) (*AdminStats, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	products, err := s.products.ListProducts(ctx, store.ProductFilter{IncludeInactive: true})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	stats := &AdminStats{TotalUsers: len(users), TotalProducts: len(products)}
	for _, user := range users {
		for _, order := range user.OrderHistory {
			stats.TotalOrders++
			switch order.Status {
			case models.OrderPending:
				stats.PendingOrders++
			case models.OrderDelivered:
				stats.TotalRevenue += order.TotalAmount
			}
		}
	}
	return stats, nil
}

func (s *OrderService) sellerProductIDs(ctx context.Context, sellerID primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	ids, err := s.sellerProductIDList(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	set := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *OrderService) sellerProductIDList(ctx context.Context, sellerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	products, err := s.products.ListProducts(ctx, store.ProductFilter{Seller: sellerID, IncludeInactive: true})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids, nil
}
