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

func TestCartAddMergesQuantities(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 10)
	userID := newTestUser(t, st, nil)
	svc := NewCartService(st, st)

	require.NoError(t, svc.Add(context.Background(), userID, productA, 2))
	require.NoError(t, svc.Add(context.Background(), userID, productA, 3))

	user, err := st.UserByID(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, user.Cart, 1, "duplicate product must merge, not append")
	assert.Equal(t, 5, user.Cart[0].Quantity)
}

func TestCartAddUnknownProduct(t *testing.T) {
	st := store.NewMemory()
	userID := newTestUser(t, st, nil)
	svc := NewCartService(st, st)

	err := svc.Add(context.Background(), userID, primitive.NewObjectID(), 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCartAddInactiveProduct(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 10)
	userID := newTestUser(t, st, nil)

	product, err := st.ProductByID(context.Background(), productA)
	require.NoError(t, err)
	product.Status = models.ProductInactive
	require.NoError(t, st.UpdateProduct(context.Background(), product))

	err = NewCartService(st, st).Add(context.Background(), userID, productA, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCartAddBeyondStock(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 3)
	userID := newTestUser(t, st, nil)
	svc := NewCartService(st, st)

	require.ErrorIs(t, svc.Add(context.Background(), userID, productA, 4), ErrInsufficientStock)

	// The merged quantity counts against stock too.
	require.NoError(t, svc.Add(context.Background(), userID, productA, 2))
	require.ErrorIs(t, svc.Add(context.Background(), userID, productA, 2), ErrInsufficientStock)
}

func TestCartSetQuantity(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 10)
	userID := newTestUser(t, st, []models.CartItem{{ProductID: productA, Quantity: 1}})
	svc := NewCartService(st, st)

	require.NoError(t, svc.SetQuantity(context.Background(), userID, productA, 4))

	user, err := st.UserByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 4, user.Cart[0].Quantity)
}

func TestCartSetQuantityZeroIsNotRemoval(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 10)
	userID := newTestUser(t, st, []models.CartItem{{ProductID: productA, Quantity: 1}})

	err := NewCartService(st, st).SetQuantity(context.Background(), userID, productA, 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCartSetQuantityAbsentLine(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 10)
	userID := newTestUser(t, st, nil)

	err := NewCartService(st, st).SetQuantity(context.Background(), userID, productA, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCartSetQuantityBeyondStock(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 3)
	userID := newTestUser(t, st, []models.CartItem{{ProductID: productA, Quantity: 1}})

	err := NewCartService(st, st).SetQuantity(context.Background(), userID, productA, 5)
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCartRemoveIsIdempotent(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 10)
	userID := newTestUser(t, st, []models.CartItem{{ProductID: productA, Quantity: 2}})
	svc := NewCartService(st, st)

	require.NoError(t, svc.Remove(context.Background(), userID, productA))
	require.NoError(t, svc.Remove(context.Background(), userID, productA), "removing an absent product is a no-op success")

	user, err := st.UserByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, user.Cart)
}

func TestCartGetSkipsDeletedProducts(t *testing.T) {
	st := store.NewMemory()
	productA := newTestProduct(t, st, "productA", 10, 10)
	productB := newTestProduct(t, st, "productB", 5, 5)
	userID := newTestUser(t, st, []models.CartItem{
		{ProductID: productA, Quantity: 1},
		{ProductID: productB, Quantity: 1},
	})
	require.NoError(t, st.SoftDeleteProduct(context.Background(), productB))

	lines, err := NewCartService(st, st).Get(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "productA", lines[0].Product.Name)
}
