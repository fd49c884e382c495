package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-marketplace/models"
	"go-marketplace/services"
	"go-marketplace/store"
)

// SellerController serves the seller dashboard: stats, own products and
// orders, discounts and stock management.
type SellerController struct {
	catalog *services.CatalogService
	orders  *services.OrderService
	log     *zap.SugaredLogger
}

// NewSellerController creates a new SellerController.
func NewSellerController(catalog *services.CatalogService, orders *services.OrderService, log *zap.SugaredLogger) *SellerController {
	return &SellerController{catalog: catalog, orders: orders, log: log}
}

// GetStats returns dashboard figures for the calling seller.
func (sc *SellerController) GetStats(w http.ResponseWriter, r *http.Request) {
	sellerID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	stats, err := sc.orders.Stats(r.Context(), sellerID)
	if err != nil {
		writeError(w, sc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetProducts lists the caller's own products, inactive included.
func (sc *SellerController) GetProducts(w http.ResponseWriter, r *http.Request) {
	sellerID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	products, err := sc.catalog.Products(r.Context(), store.ProductFilter{Seller: sellerID, IncludeInactive: true})
	if err != nil {
		writeError(w, sc.log, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetOrders lists orders containing the caller's products.
func (sc *SellerController) GetOrders(w http.ResponseWriter, r *http.Request) {
	sellerID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := sc.orders.SellerOrders(r.Context(), sellerID)
	if err != nil {
		writeError(w, sc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateStock replaces the stock level of one of the caller's products.
func (sc *SellerController) UpdateStock(w http.ResponseWriter, r *http.Request) {
	sellerID, claims, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	productID, ok := pathID(mux.Vars(r), "productId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var in struct {
		Stock int `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := sc.catalog.SetStock(r.Context(), productID, sellerID, claims.Role, in.Stock); err != nil {
		writeError(w, sc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Stock updated")
}

// CreateDiscount attaches a discount window to one of the caller's products.
func (sc *SellerController) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	sellerID, claims, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in struct {
		ProductID  primitive.ObjectID `json:"product_id"`
		Percentage float64            `json:"percentage"`
		StartDate  time.Time          `json:"start_date"`
		EndDate    time.Time          `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID := in.ProductID

	discount := models.Discount{Percentage: in.Percentage, StartDate: in.StartDate, EndDate: in.EndDate}
	if err := sc.catalog.AddDiscount(r.Context(), productID, sellerID, claims.Role, discount); err != nil {
		writeError(w, sc.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, discount)
}

// GetDiscounts lists the caller's products that carry discounts.
func (sc *SellerController) GetDiscounts(w http.ResponseWriter, r *http.Request) {
	sellerID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	products, err := sc.catalog.Products(r.Context(), store.ProductFilter{
		Seller:          sellerID,
		IncludeInactive: true,
		WithDiscounts:   true,
	})
	if err != nil {
		writeError(w, sc.log, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}
