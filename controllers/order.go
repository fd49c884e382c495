package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"go-marketplace/models"
	"go-marketplace/services"
	"go-marketplace/utils"
)

// OrderController handles order-related requests
type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
	users    *services.UserService
	email    *utils.EmailService
	log      *zap.SugaredLogger
}

// NewOrderController creates a new OrderController
func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService, users *services.UserService, email *utils.EmailService, log *zap.SugaredLogger) *OrderController {
	return &OrderController{checkout: checkout, orders: orders, users: users, email: email, log: log}
}

// CreateOrder converts the caller's cart into an order. Items come from the
// cart, never from the request body.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, claims, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in struct {
		ShippingAddress models.Address `json:"shipping_address"`
		PaymentMethod   string         `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	order, err := oc.checkout.PlaceOrder(r.Context(), userID, in.ShippingAddress, in.PaymentMethod)
	if err != nil {
		writeError(w, oc.log, err)
		return
	}

	if oc.email.Enabled() {
		go func(email string, order models.Order) {
			name := email
			if user, err := oc.users.Profile(context.Background(), userID); err == nil {
				name = user.Username
			}
			if err := oc.email.SendOrderConfirmationEmail(email, name, order); err != nil {
				oc.log.Warnw("order confirmation email failed", "email", email, "error", err)
			}
		}(claims.Email, *order)
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetOrders retrieves all orders for the authenticated user
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := oc.orders.Orders(r.Context(), userID)
	if err != nil {
		writeError(w, oc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrderByID retrieves a single order scoped to the caller.
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderID, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := oc.orders.Order(r.Context(), userID, orderID)
	if err != nil {
		writeError(w, oc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// GetAllOrders lists every order in the system (administrator only).
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oc.orders.AllOrders(r.Context())
	if err != nil {
		writeError(w, oc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetAdminStats returns marketplace-wide figures (administrator only).
func (oc *OrderController) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := oc.orders.MarketplaceStats(r.Context())
	if err != nil {
		writeError(w, oc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UpdateOrderStatus moves an order along its lifecycle (seller or
// administrator only, enforced by the capability gate on the route).
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	callerID, claims, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderID, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var in struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	order, ownerEmail, err := oc.orders.UpdateStatus(r.Context(), orderID, callerID, claims.Role, in.Status)
	if err != nil {
		writeError(w, oc.log, err)
		return
	}

	if oc.email.Enabled() && ownerEmail != "" {
		go func(email string, order models.Order) {
			if err := oc.email.SendOrderStatusEmail(email, order); err != nil {
				oc.log.Warnw("order status email failed", "email", email, "error", err)
			}
		}(ownerEmail, *order)
	}

	writeJSON(w, http.StatusOK, order)
}
