package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
)

func TestDecrementStockConditional(t *testing.T) {
	m := NewMemory()
	id, err := m.CreateProduct(context.Background(), &models.Product{
		Name:   "widget",
		Stock:  2,
		Status: models.ProductActive,
	})
	require.NoError(t, err)

	require.NoError(t, m.DecrementStock(context.Background(), id, 2))

	// Stock never crosses zero.
	err = m.DecrementStock(context.Background(), id, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	product, err := m.ProductByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, product.Stock)
}

func TestDecrementStockInactiveProduct(t *testing.T) {
	m := NewMemory()
	id, err := m.CreateProduct(context.Background(), &models.Product{
		Name:   "retired",
		Stock:  5,
		Status: models.ProductInactive,
	})
	require.NoError(t, err)

	// Non-purchasable products behave as missing for buyers.
	err = m.DecrementStock(context.Background(), id, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	m := NewMemory()

	err := m.DecrementStock(context.Background(), primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOrderStatusCompareAndSwap(t *testing.T) {
	m := NewMemory()
	userID, err := m.CreateUser(context.Background(), &models.User{
		Username: "buyer",
		Email:    "buyer@example.com",
		Role:     models.RoleCustomer,
		IsActive: true,
		OrderHistory: []models.Order{{
			ID:     primitive.NewObjectID(),
			Status: models.OrderPending,
		}},
	})
	require.NoError(t, err)

	user, err := m.UserByID(context.Background(), userID)
	require.NoError(t, err)
	orderID := user.OrderHistory[0].ID

	require.NoError(t, m.UpdateOrderStatus(context.Background(), orderID, models.OrderPending, models.OrderProcessing))

	// A second writer racing on the same expected status loses.
	err = m.UpdateOrderStatus(context.Background(), orderID, models.OrderPending, models.OrderCancelled)
	assert.ErrorIs(t, err, ErrStaleStatus)

	order, err := m.OrderByID(context.Background(), userID, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, order.Status)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateUser(context.Background(), &models.User{Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = m.CreateUser(context.Background(), &models.User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}
