package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-marketplace/services"
)

// CartController handles cart-related requests
type CartController struct {
	cart *services.CartService
	log  *zap.SugaredLogger
}

// NewCartController creates a new CartController
func NewCartController(cart *services.CartService, log *zap.SugaredLogger) *CartController {
	return &CartController{cart: cart, log: log}
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	lines, err := cc.cart.Get(r.Context(), userID)
	if err != nil {
		writeError(w, cc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// AddToCart adds a product to the user's cart, merging quantities when the
// product is already present.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in struct {
		ProductID primitive.ObjectID `json:"product_id"`
		Quantity  int                `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := cc.cart.Add(r.Context(), userID, in.ProductID, in.Quantity); err != nil {
		writeError(w, cc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Item added to cart")
}

// SetQuantity replaces the quantity of an existing cart line.
func (cc *CartController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(r)
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
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := cc.cart.SetQuantity(r.Context(), userID, productID, in.Quantity); err != nil {
		writeError(w, cc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Quantity updated")
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	productID, ok := pathID(mux.Vars(r), "productId")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := cc.cart.Remove(r.Context(), userID, productID); err != nil {
		writeError(w, cc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Item removed from cart")
}
