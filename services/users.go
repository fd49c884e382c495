package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"go-marketplace/models"
	"go-marketplace/store"
)

// ErrInvalidCredentials is returned when login email or password is wrong.
// Deliberately indistinguishable between the two cases.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService handles accounts and wishlists.
type UserService struct {
	users    store.UserStore
	products store.ProductStore
	now      func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, products store.ProductStore) *UserService {
	return &UserService{users: users, products: products, now: time.Now}
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Phone    string         `json:"phone"`
	Address  models.Address `json:"address"`
	Role     string         `json:"role,omitempty"`
}

// Register creates a new account. Self-registration is limited to customer
// and seller roles; administrators come from the seed step only.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if len(username) < 3 || len(username) > 20 {
		return nil, fmt.Errorf("%w: username must be 3-20 characters", ErrValidation)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	role := models.RoleCustomer
	if in.Role != "" {
		role = models.Role(in.Role)
		if role != models.RoleCustomer && role != models.RoleSeller {
			return nil, fmt.Errorf("%w: role must be customer or seller", ErrValidation)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		Password:     string(hashed),
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         role,
		IsActive:     true,
		Cart:         []models.CartItem{},
		OrderHistory: []models.Order{},
		Wishlist:     []primitive.ObjectID{},
		CreatedAt:    s.now().UTC(),
	}

	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: email already registered", ErrValidation)
		}
		return nil, mapStoreErr(err)
	}
	user.ID = id
	user.Password = ""
	return user, nil
}

// Authenticate verifies email and password and returns the account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user.Password = ""
	return user, nil
}

// Profile returns the account for the given id with credentials stripped.
func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	user.Password = ""
	return user, nil
}

// Users lists all accounts. Administrator only; enforced at the gate.
func (s *UserService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// SetRole changes an account's role. Administrators cannot change their own
// role, so at least one administrator always remains.
func (s *UserService) SetRole(ctx context.Context, callerID, userID primitive.ObjectID, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if callerID == userID {
		return nil, fmt.Errorf("%w: cannot change own role", ErrValidation)
	}
	if err := s.users.SetUserRole(ctx, userID, role); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.Profile(ctx, userID)
}

// SetActive blocks or unblocks an account. Blocked accounts fail
// authentication; existing tokens die with their expiry.
func (s *UserService) SetActive(ctx context.Context, callerID, userID primitive.ObjectID, active bool) (*models.User, error) {
	if callerID == userID {
		return nil, fmt.Errorf("%w: cannot change own account status", ErrValidation)
	}
	if err := s.users.SetUserActive(ctx, userID, active); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.Profile(ctx, userID)
}

// Wishlist returns the user's wishlisted products, skipping any that have
// been deleted since.
func (s *UserService) Wishlist(ctx context.Context, userID primitive.ObjectID) ([]models.Product, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	products := make([]models.Product, 0, len(user.Wishlist))
	for _, id := range user.Wishlist {
		product, err := s.products.ProductByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if product.Status == models.ProductDeleted {
			continue
		}
		products = append(products, *product)
	}
	return products, nil
}

// AddToWishlist adds a product reference to the user's wishlist.
func (s *UserService) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return mapStoreErr(err)
	}
	if product.Status == models.ProductDeleted {
		return fmt.Errorf("%w: product %s", ErrNotFound, productID.Hex())
	}
	return mapStoreErr(s.users.AddToWishlist(ctx, userID, productID))
}

// RemoveFromWishlist removes a product reference; absent entries are a no-op.
func (s *UserService) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	return mapStoreErr(s.users.RemoveFromWishlist(ctx, userID, productID))
}
