package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-marketplace/models"
	"go-marketplace/services"
	"go-marketplace/store"
)

// ProductController handles product and review requests.
type ProductController struct {
	catalog *services.CatalogService
	reviews *services.ReviewService
	log     *zap.SugaredLogger
}

// NewProductController creates a new ProductController.
func NewProductController(catalog *services.CatalogService, reviews *services.ReviewService, log *zap.SugaredLogger) *ProductController {
	return &ProductController{catalog: catalog, reviews: reviews, log: log}
}

// GetProducts retrieves all active products, optionally filtered by
// category or seller query parameters.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter := store.ProductFilter{}
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "Invalid category ID")
			return
		}
		filter.Category = id
	}
	if raw := r.URL.Query().Get("seller"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "Invalid seller ID")
			return
		}
		filter.Seller = id
	}

	products, err := pc.catalog.Products(r.Context(), filter)
	if err != nil {
		writeError(w, pc.log, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := pc.catalog.Product(r.Context(), id)
	if err != nil {
		writeError(w, pc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product (seller/administrator only).
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in services.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	product, err := pc.catalog.CreateProduct(r.Context(), sellerID, in)
	if err != nil {
		writeError(w, pc.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles updating a product owned by the caller.
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	callerID, claims, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var in services.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	product, err := pc.catalog.UpdateProduct(r.Context(), id, callerID, claims.Role, in)
	if err != nil {
		writeError(w, pc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct marks a product deleted. Historical orders keep their
// references, so nothing is removed physically.
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	callerID, claims, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := pc.catalog.DeleteProduct(r.Context(), id, callerID, claims.Role); err != nil {
		writeError(w, pc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Product deleted")
}

// UpdateProductStatus toggles a product between active and inactive without
// touching the rest of the listing.
func (pc *ProductController) UpdateProductStatus(w http.ResponseWriter, r *http.Request) {
	callerID, claims, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var in struct {
		Status models.ProductStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	product, err := pc.catalog.SetProductStatus(r.Context(), id, callerID, claims.Role, in.Status)
	if err != nil {
		writeError(w, pc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// AddReview appends a review to a product.
func (pc *ProductController) AddReview(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	productID, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var in struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	review, err := pc.reviews.Add(r.Context(), productID, userID, in.Rating, in.Comment)
	if err != nil {
		writeError(w, pc.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// UpdateReview replaces the caller's review rating and comment.
func (pc *ProductController) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, claims, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	vars := mux.Vars(r)
	productID, ok := pathID(vars, "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	reviewID, ok := pathID(vars, "reviewId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var in struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := pc.reviews.Update(r.Context(), productID, reviewID, userID, claims.Role, in.Rating, in.Comment); err != nil {
		writeError(w, pc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Review updated")
}

// DeleteReview removes the caller's review and recomputes the rating.
func (pc *ProductController) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, claims, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	vars := mux.Vars(r)
	productID, ok := pathID(vars, "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	reviewID, ok := pathID(vars, "reviewId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := pc.reviews.Delete(r.Context(), productID, reviewID, userID, claims.Role); err != nil {
		writeError(w, pc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Review deleted")
}
