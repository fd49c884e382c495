package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
	"go-marketplace/store"
)

// placeTestOrder runs a real checkout so order fixtures match production
// shape: snapshot items, pending status, cleared cart.
func placeTestOrder(t *testing.T, st *store.Memory, productID primitive.ObjectID, qty int) (primitive.ObjectID, *models.Order) {
	t.Helper()
	userID := newTestUser(t, st, []models.CartItem{{ProductID: productID, Quantity: qty}})
	order, err := newCheckout(st).PlaceOrder(context.Background(), userID, models.Address{}, "card")
	require.NoError(t, err)
	return userID, order
}

func newSeller(t *testing.T, st *store.Memory) primitive.ObjectID {
	t.Helper()
	user := &models.User{
		Username: "seller",
		Email:    primitive.NewObjectID().Hex() + "@example.com",
		Role:     models.RoleSeller,
		IsActive: true,
	}
	id, err := st.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return id
}

func sellerProduct(t *testing.T, st *store.Memory, sellerID primitive.ObjectID, name string, price float64, stock int) primitive.ObjectID {
	t.Helper()
	product := &models.Product{
		Name:   name,
		Price:  price,
		Stock:  stock,
		Seller: sellerID,
		Status: models.ProductActive,
	}
	id, err := st.CreateProduct(context.Background(), product)
	require.NoError(t, err)
	return id
}

func TestUpdateStatusLifecycle(t *testing.T) {
	st := store.NewMemory()
	admin := addReviewer(t, st, "admin")
	productA := newTestProduct(t, st, "productA", 10, 5)
	_, order := placeTestOrder(t, st, productA, 1)
	svc := NewOrderService(st, st)

	for _, next := range []models.OrderStatus{models.OrderProcessing, models.OrderShipped, models.OrderDelivered} {
		updated, _, err := svc.UpdateStatus(context.Background(), order.ID, admin, models.RoleAdministrator, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	// Delivered is terminal.
	_, _, err := svc.UpdateStatus(context.Background(), order.ID, admin, models.RoleAdministrator, models.OrderPending)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
	_, _, err = svc.UpdateStatus(context.Background(), order.ID, admin, models.RoleAdministrator, models.OrderCancelled)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateStatusCancellation(t *testing.T) {
	st := store.NewMemory()
	admin := addReviewer(t, st, "admin")
	productA := newTestProduct(t, st, "productA", 10, 5)
	_, order := placeTestOrder(t, st, productA, 1)
	svc := NewOrderService(st, st)

	updated, _, err := svc.UpdateStatus(context.Background(), order.ID, admin, models.RoleAdministrator, models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, updated.Status)

	// Cancelled is terminal too.
	_, _, err = svc.UpdateStatus(context.Background(), order.ID, admin, models.RoleAdministrator, models.OrderProcessing)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateStatusSkippingStages(t *testing.T) {
	st := store.NewMemory()
	admin := addReviewer(t, st, "admin")
	productA := newTestProduct(t, st, "productA", 10, 5)
	_, order := placeTestOrder(t, st, productA, 1)

	_, _, err := NewOrderService(st, st).UpdateStatus(context.Background(), order.ID, admin, models.RoleAdministrator, models.OrderShipped)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateStatusSellerOwnership(t *testing.T) {
	st := store.NewMemory()
	sellerID := newSeller(t, st)
	otherSeller := newSeller(t, st)
	productA := sellerProduct(t, st, sellerID, "productA", 10, 5)
	ownerID, order := placeTestOrder(t, st, productA, 1)
	svc := NewOrderService(st, st)

	_, _, err := svc.UpdateStatus(context.Background(), order.ID, otherSeller, models.RoleSeller, models.OrderProcessing)
	require.ErrorIs(t, err, ErrForbidden)

	updated, ownerEmail, err := svc.UpdateStatus(context.Background(), order.ID, sellerID, models.RoleSeller, models.OrderProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, updated.Status)

	owner, err := st.UserByID(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, owner.Email, ownerEmail)
}

func TestOrderScopedToOwner(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 5)
	ownerID, order := placeTestOrder(t, st, productA, 1)
	stranger := newTestUser(t, st, nil)
	svc := NewOrderService(st, st)

	got, err := svc.Order(context.Background(), ownerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.Order(context.Background(), stranger, order.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSellerOrdersAndStats(t *testing.T) {
	st := store.NewMemory()
	sellerID := newSeller(t, st)
	productA := sellerProduct(t, st, sellerID, "productA", 10, 10)
	productB := sellerProduct(t, st, sellerID, "productB", 5, 10)
	foreign := newTestProduct(t, st, "foreign", 7, 10)

	_, orderA := placeTestOrder(t, st, productA, 2)
	placeTestOrder(t, st, productB, 1)
	placeTestOrder(t, st, foreign, 1)

	svc := NewOrderService(st, st)

	orders, err := svc.SellerOrders(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Len(t, orders, 2, "foreign product orders must not leak into the seller view")

	// Only delivered orders count toward revenue.
	admin := addReviewer(t, st, "admin")
	for _, next := range []models.OrderStatus{models.OrderProcessing, models.OrderShipped, models.OrderDelivered} {
		_, _, err := svc.UpdateStatus(context.Background(), orderA.ID, admin, models.RoleAdministrator, next)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 20.0, stats.TotalRevenue)
}

func TestAllOrdersAndMarketplaceStats(t *testing.T) {
	st := store.NewMemory()
	admin := addReviewer(t, st, "admin")
	productA := newTestProduct(t, st, "productA", 10, 10)
	productB := newTestProduct(t, st, "productB", 5, 10)

	ownerA, orderA := placeTestOrder(t, st, productA, 2)
	ownerB, _ := placeTestOrder(t, st, productB, 1)

	svc := NewOrderService(st, st)

	orders, err := svc.AllOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	owners := map[primitive.ObjectID]bool{orders[0].UserID: true, orders[1].UserID: true}
	assert.True(t, owners[ownerA])
	assert.True(t, owners[ownerB])

	for _, next := range []models.OrderStatus{models.OrderProcessing, models.OrderShipped, models.OrderDelivered} {
		_, _, err := svc.UpdateStatus(context.Background(), orderA.ID, admin, models.RoleAdministrator, next)
		require.NoError(t, err)
	}

	stats, err := svc.MarketplaceStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers, "two shoppers plus the administrator")
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 20.0, stats.TotalRevenue)
}
