package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
	"go-marketplace/store"
)

func testCategory(t *testing.T, st *store.Memory, name string, parent *primitive.ObjectID) primitive.ObjectID {
	t.Helper()
	id, err := st.CreateCategory(context.Background(), &models.Category{
		Name:     name,
		Slug:     models.Slugify(name),
		Parent:   parent,
		IsActive: true,
	})
	require.NoError(t, err)
	return id
}

func TestCreateProductRequiresCategory(t *testing.T) {
	st := store.NewMemory()
	svc := NewCatalogService(st, st)
	sellerID := primitive.NewObjectID()

	_, err := svc.CreateProduct(context.Background(), sellerID, ProductInput{
		Name:     "lamp",
		Price:    10,
		Category: primitive.NewObjectID(),
	})
	require.ErrorIs(t, err, ErrNotFound)

	catID := testCategory(t, st, "Lighting", nil)
	product, err := svc.CreateProduct(context.Background(), sellerID, ProductInput{
		Name:     "lamp",
		Price:    10,
		Stock:    3,
		Category: catID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductActive, product.Status)
	assert.Equal(t, sellerID, product.Seller)
}

func TestCreateProductValidation(t *testing.T) {
	st := store.NewMemory()
	svc := NewCatalogService(st, st)
	catID := testCategory(t, st, "Lighting", nil)

	cases := []struct {
		name string
		in   ProductInput
	}{
		{"empty name", ProductInput{Name: "  ", Price: 1, Category: catID}},
		{"negative price", ProductInput{Name: "lamp", Price: -1, Category: catID}},
		{"negative stock", ProductInput{Name: "lamp", Price: 1, Stock: -2, Category: catID}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), primitive.NewObjectID(), c.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdateProductOwnership(t *testing.T) {
	st := store.NewMemory()
	svc := NewCatalogService(st, st)
	catID := testCategory(t, st, "Lighting", nil)
	sellerID := primitive.NewObjectID()

	product, err := svc.CreateProduct(context.Background(), sellerID, ProductInput{
		Name: "lamp", Price: 10, Stock: 3, Category: catID,
	})
	require.NoError(t, err)

	in := ProductInput{Name: "brass lamp", Price: 12, Category: catID}

	_, err = svc.UpdateProduct(context.Background(), product.ID, primitive.NewObjectID(), models.RoleSeller, in)
	require.ErrorIs(t, err, ErrForbidden)

	// The owner and any administrator may update.
	updated, err := svc.UpdateProduct(context.Background(), product.ID, sellerID, models.RoleSeller, in)
	require.NoError(t, err)
	assert.Equal(t, "brass lamp", updated.Name)
	assert.Equal(t, 12.0, updated.Price)

	_, err = svc.UpdateProduct(context.Background(), product.ID, primitive.NewObjectID(), models.RoleAdministrator, in)
	require.NoError(t, err)
}

func TestUpdateProductCannotSetDeleted(t *testing.T) {
	st := store.NewMemory()
	svc := NewCatalogService(st, st)
	catID := testCategory(t, st, "Lighting", nil)
	sellerID := primitive.NewObjectID()

	product, err := svc.CreateProduct(context.Background(), sellerID, ProductInput{
		Name: "lamp", Price: 10, Category: catID,
	})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(context.Background(), product.ID, sellerID, models.RoleSeller, ProductInput{
		Name: "lamp", Price: 10, Category: catID, Status: "deleted",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteProductIsLogical(t *testing.T) {
	st := store.NewMemory()
	svc := NewCatalogService(st, st)
	catID := testCategory(t, st, "Lighting", nil)
	sellerID := primitive.NewObjectID()

	product, err := svc.CreateProduct(context.Background(), sellerID, ProductInput{
		Name: "lamp", Price: 10, Category: catID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID, sellerID, models.RoleSeller))

	// Public reads see nothing, the document itself remains.
	_, err = svc.Product(context.Background(), product.ID)
	require.ErrorIs(t, err, ErrNotFound)

	stored, err := st.ProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductDeleted, stored.Status)

	// Deleted products cannot be mutated further.
	err = svc.DeleteProduct(context.Background(), product.ID, sellerID, models.RoleSeller)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddDiscountValidation(t *testing.T) {
	st := store.NewMemory()
	svc := NewCatalogService(st, st)
	catID := testCategory(t, st, "Lighting", nil)
	sellerID := primitive.NewObjectID()

	product, err := svc.CreateProduct(context.Background(), sellerID, ProductInput{
		Name: "lamp", Price: 10, Category: catID,
	})
	require.NoError(t, err)

	now := time.Now()

	err = svc.AddDiscount(context.Background(), product.ID, sellerID, models.RoleSeller, models.Discount{
		Percentage: 120, StartDate: now, EndDate: now.Add(time.Hour),
	})
	require.ErrorIs(t, err, ErrValidation)

	err = svc.AddDiscount(context.Background(), product.ID, sellerID, models.RoleSeller, models.Discount{
		Percentage: 20, StartDate: now.Add(time.Hour), EndDate: now,
	})
	require.ErrorIs(t, err, ErrValidation)

	err = svc.AddDiscount(context.Background(), product.ID, sellerID, models.RoleSeller, models.Discount{
		Percentage: 20, StartDate: now, EndDate: now.Add(time.Hour),
	})
	require.NoError(t, err)

	stored, err := st.ProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Discounts, 1)
}

func TestSetProductStatus(t *testing.T) {
	st := store.NewMemory()
	svc := NewCatalogService(st, st)
	catID := testCategory(t, st, "Lighting", nil)
	sellerID := primitive.NewObjectID()

	product, err := svc.CreateProduct(context.Background(), sellerID, ProductInput{
		Name: "lamp", Price: 10, Category: catID,
	})
	require.NoError(t, err)

	// Only active and inactive are reachable through moderation.
	_, err = svc.SetProductStatus(context.Background(), product.ID, sellerID, models.RoleSeller, models.ProductDeleted)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetProductStatus(context.Background(), product.ID, primitive.NewObjectID(), models.RoleSeller, models.ProductInactive)
	require.ErrorIs(t, err, ErrForbidden)

	hidden, err := svc.SetProductStatus(context.Background(), product.ID, sellerID, models.RoleSeller, models.ProductInactive)
	require.NoError(t, err)
	assert.Equal(t, models.ProductInactive, hidden.Status)
	assert.False(t, hidden.Purchasable())

	// Administrators can moderate any listing.
	restored, err := svc.SetProductStatus(context.Background(), product.ID, primitive.NewObjectID(), models.RoleAdministrator, models.ProductActive)
	require.NoError(t, err)
	assert.True(t, restored.Purchasable())
}

func TestCategoryDeactivation(t *testing.T) {
	st := store.NewMemory()
	svc := NewCatalogService(st, st)

	kept, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Lighting"})
	require.NoError(t, err)
	retired, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Gramophones"})
	require.NoError(t, err)

	off := false
	_, err = svc.UpdateCategory(context.Background(), retired.ID, CategoryInput{Name: "Gramophones", IsActive: &off})
	require.NoError(t, err)

	listed, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, kept.ID, listed[0].ID)

	// Deactivated categories stay addressable by id.
	got, err := svc.Category(context.Background(), retired.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestCategoryTree(t *testing.T) {
	st := store.NewMemory()
	svc := NewCatalogService(st, st)

	root, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Home & Garden"})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", root.Slug)

	child, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Lighting", Parent: &root.ID})
	require.NoError(t, err)

	got, err := svc.Category(context.Background(), root.ID)
	require.NoError(t, err)
	require.Len(t, got.Subcategories, 1)
	assert.Equal(t, child.ID, got.Subcategories[0].ID)

	// A category cannot become its own parent.
	_, err = svc.UpdateCategory(context.Background(), root.ID, CategoryInput{Name: "Home", Parent: &root.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateCategoryUnknownParent(t *testing.T) {
	svc := NewCatalogService(store.NewMemory(), store.NewMemory())
	parent := primitive.NewObjectID()

	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Orphans", Parent: &parent})
	assert.ErrorIs(t, err, ErrNotFound)
}
