package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
	"go-marketplace/store"
)

// CatalogService manages products and categories. Sellers may only mutate
// their own products; administrators may mutate any. Product deletion is
// logical so historical orders keep valid references.
type CatalogService struct {
	products   store.ProductStore
	categories store.CategoryStore
	now        func() time.Time
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(products store.ProductStore, categories store.CategoryStore) *CatalogService {
	return &CatalogService{products: products, categories: categories, now: time.Now}
}

// ProductInput carries the caller-supplied product fields.
type ProductInput struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Category    primitive.ObjectID `json:"category"`
	Images      []string           `json:"images"`
	Stock       int                `json:"stock"`
	Status      string             `json:"status,omitempty"`
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	return nil
}

// CreateProduct adds a new active product owned by the given seller.
func (s *CatalogService) CreateProduct(ctx context.Context, sellerID primitive.ObjectID, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.categories.CategoryByID(ctx, in.Category); err != nil {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, in.Category.Hex())
	}

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Seller:      sellerID,
		Images:      in.Images,
		Stock:       in.Stock,
		Reviews:     []models.Review{},
		Status:      models.ProductActive,
		CreatedAt:   s.now().UTC(),
	}
	id, err := s.products.CreateProduct(ctx, product)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	product.ID = id
	return product, nil
}

// Product returns a product visible to the public: deleted products behave
// as missing.
func (s *CatalogService) Product(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.ProductByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if product.Status == models.ProductDeleted {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id.Hex())
	}
	return product, nil
}

// Products lists the catalog, optionally filtered by category or seller.
func (s *CatalogService) Products(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	products, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return products, nil
}

// UpdateProduct applies catalog fields to an existing product after an
// ownership check. Stock is not updated here; sellers use SetStock.
func (s *CatalogService) UpdateProduct(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := s.ownedProduct(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	status := product.Status
	if in.Status != "" {
		switch models.ProductStatus(in.Status) {
		case models.ProductActive, models.ProductInactive:
			status = models.ProductStatus(in.Status)
		default:
			return nil, fmt.Errorf("%w: status must be active or inactive", ErrValidation)
		}
	}
	if _, err := s.categories.CategoryByID(ctx, in.Category); err != nil {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, in.Category.Hex())
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Category = in.Category
	product.Images = in.Images
	product.Status = status

	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return nil, mapStoreErr(err)
	}
	return product, nil
}

// DeleteProduct marks a product deleted. Physical removal never happens:
// carts and order history reference products by id.
func (s *CatalogService) DeleteProduct(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role) error {
	if _, err := s.ownedProduct(ctx, id, callerID, callerRole); err != nil {
		return err
	}
	return mapStoreErr(s.products.SoftDeleteProduct(ctx, id))
}

// SetProductStatus toggles a product between active and inactive after an
// ownership check. Deletion goes through DeleteProduct only.
func (s *CatalogService) SetProductStatus(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role, status models.ProductStatus) (*models.Product, error) {
	if status != models.ProductActive && status != models.ProductInactive {
		return nil, fmt.Errorf("%w: status must be active or inactive", ErrValidation)
	}
	product, err := s.ownedProduct(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	product.Status = status
	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return nil, mapStoreErr(err)
	}
	return product, nil
}

// SetStock replaces a product's stock level after an ownership check.
func (s *CatalogService) SetStock(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if _, err := s.ownedProduct(ctx, id, callerID, callerRole); err != nil {
		return err
	}
	return mapStoreErr(s.products.SetStock(ctx, id, stock))
}

// AddDiscount attaches a percentage discount window to an owned product.
func (s *CatalogService) AddDiscount(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role, discount models.Discount) error {
	if discount.Percentage <= 0 || discount.Percentage > 100 {
		return fmt.Errorf("%w: percentage must be within (0, 100]", ErrValidation)
	}
	if !discount.EndDate.After(discount.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}
	if _, err := s.ownedProduct(ctx, id, callerID, callerRole); err != nil {
		return err
	}
	return mapStoreErr(s.products.AddDiscount(ctx, id, discount))
}

func (s *CatalogService) ownedProduct(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role) (*models.Product, error) {
	product, err := s.products.ProductByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if product.Status == models.ProductDeleted {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id.Hex())
	}
	if product.Seller != callerID && callerRole != models.RoleAdministrator {
		return nil, ErrForbidden
	}
	return product, nil
}

// CategoryInput carries caller-supplied category fields. IsActive is a
// pointer so updates can leave the flag untouched; new categories default
// to active.
type CategoryInput struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Parent        *primitive.ObjectID `json:"parent,omitempty"`
	FeaturedOrder int                 `json:"featured_order"`
	IsActive      *bool               `json:"is_active,omitempty"`
}

// CreateCategory adds a category, optionally under a parent.
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if in.Parent != nil {
		if _, err := s.categories.CategoryByID(ctx, *in.Parent); err != nil {
			return nil, fmt.Errorf("%w: parent category %s", ErrNotFound, in.Parent.Hex())
		}
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	category := &models.Category{
		Name:          in.Name,
		Description:   in.Description,
		Slug:          models.Slugify(in.Name),
		Parent:        in.Parent,
		IsActive:      active,
		FeaturedOrder: in.FeaturedOrder,
		CreatedAt:     s.now().UTC(),
	}
	id, err := s.categories.CreateCategory(ctx, category)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	category.ID = id
	return category, nil
}

// CategoryWithChildren is a category plus its derived subcategory list.
type CategoryWithChildren struct {
	models.Category
	Subcategories []models.Category `json:"subcategories"`
}

// Category returns a category with subcategories resolved by reverse lookup
// on the parent reference.
func (s *CatalogService) Category(ctx context.Context, id primitive.ObjectID) (*CategoryWithChildren, error) {
	category, err := s.categories.CategoryByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	children, err := s.categories.ListSubcategories(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if children == nil {
		children = []models.Category{}
	}
	return &CategoryWithChildren{Category: *category, Subcategories: children}, nil
}

// Categories lists active categories ordered by featured position.
// Deactivated categories stay addressable by id for administration.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	active := make([]models.Category, 0, len(categories))
	for _, category := range categories {
		if category.IsActive {
			active = append(active, category)
		}
	}
	return active, nil
}

// UpdateCategory applies caller-supplied fields to a category.
func (s *CatalogService) UpdateCategory(ctx context.Context, id primitive.ObjectID, in CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}

	category, err := s.categories.CategoryByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if in.Parent != nil {
		if *in.Parent == id {
			return nil, fmt.Errorf("%w: category cannot be its own parent", ErrValidation)
		}
		if _, err := s.categories.CategoryByID(ctx, *in.Parent); err != nil {
			return nil, fmt.Errorf("%w: parent category %s", ErrNotFound, in.Parent.Hex())
		}
	}

	category.Name = in.Name
	category.Description = in.Description
	category.Slug = models.Slugify(in.Name)
	category.Parent = in.Parent
	category.FeaturedOrder = in.FeaturedOrder
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	if err := s.categories.UpdateCategory(ctx, category); err != nil {
		return nil, mapStoreErr(err)
	}
	return category, nil
}

// DeleteCategory removes a category and its direct subcategories.
func (s *CatalogService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	return mapStoreErr(s.categories.DeleteCategory(ctx, id))
}
