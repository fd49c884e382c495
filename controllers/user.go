package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"go-marketplace/models"
	"go-marketplace/services"
	"go-marketplace/utils"
)

// UserController handles account and wishlist requests.
type UserController struct {
	users *services.UserService
	log   *zap.SugaredLogger
}

// NewUserController creates a new UserController.
func NewUserController(users *services.UserService, log *zap.SugaredLogger) *UserController {
	return &UserController{users: users, log: log}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := uc.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := uc.users.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(w, uc.log, err)
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := uc.users.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListUsers returns all accounts (administrator only).
func (uc *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := uc.users.Users(r.Context())
	if err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser returns a single account by id (administrator only).
func (uc *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := uc.users.Profile(r.Context(), id)
	if err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUserRole changes an account's role (administrator only).
func (uc *UserController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var in struct {
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := uc.users.SetRole(r.Context(), callerID, id, in.Role)
	if err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUserStatus blocks or unblocks an account (administrator only).
func (uc *UserController) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var in struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := uc.users.SetActive(r.Context(), callerID, id, in.IsActive)
	if err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetWishlist returns the caller's wishlisted products.
func (uc *UserController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	products, err := uc.users.Wishlist(r.Context(), userID)
	if err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// AddToWishlist adds a product to the caller's wishlist.
func (uc *UserController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
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

	if err := uc.users.AddToWishlist(r.Context(), userID, productID); err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Product added to wishlist")
}

// RemoveFromWishlist removes a product from the caller's wishlist.
func (uc *UserController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
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

	if err := uc.users.RemoveFromWishlist(r.Context(), userID, productID); err != nil {
		writeError(w, uc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Product removed from wishlist")
}
