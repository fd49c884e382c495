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

func registerTestUser(t *testing.T, svc *UserService, email, role string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "shopper",
		Email:    email,
		Password: "hunter2hunter2",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(store.NewMemory(), store.NewMemory())

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@example.com", Password: "hunter2hunter2"}},
		{"long username", RegisterInput{Username: "abcdefghijklmnopqrstu", Email: "a@example.com", Password: "hunter2hunter2"}},
		{"bad email", RegisterInput{Username: "shopper", Email: "not-an-email", Password: "hunter2hunter2"}},
		{"short password", RegisterInput{Username: "shopper", Email: "a@example.com", Password: "short"}},
		{"administrator role", RegisterInput{Username: "shopper", Email: "a@example.com", Password: "hunter2hunter2", Role: "administrator"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), c.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterNormalizesAndStripsPassword(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, st)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "  shopper  ",
		Email:    "Shopper@Example.COM",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "shopper", user.Username)
	assert.Equal(t, "shopper@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.Empty(t, user.Password)

	// The stored hash is never the plaintext.
	stored, err := st.UserByEmail(context.Background(), "shopper@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Password)
	assert.NotEqual(t, "hunter2hunter2", stored.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, st)
	registerTestUser(t, svc, "dup@example.com", "")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "other",
		Email:    "dup@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, st)
	registerTestUser(t, svc, "login@example.com", "seller")

	user, err := svc.Authenticate(context.Background(), "login@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, user.Role)
	assert.Empty(t, user.Password)

	_, err = svc.Authenticate(context.Background(), "login@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetActiveBlocksAndUnblocksLogin(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, st)
	admin := primitive.NewObjectID()
	user := registerTestUser(t, svc, "blocked@example.com", "")

	blocked, err := svc.SetActive(context.Background(), admin, user.ID, false)
	require.NoError(t, err)
	assert.False(t, blocked.IsActive)

	_, err = svc.Authenticate(context.Background(), "blocked@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	restored, err := svc.SetActive(context.Background(), admin, user.ID, true)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)

	_, err = svc.Authenticate(context.Background(), "blocked@example.com", "hunter2hunter2")
	require.NoError(t, err)
}

func TestSetActiveOwnAccountRejected(t *testing.T) {
	svc := NewUserService(store.NewMemory(), store.NewMemory())
	admin := primitive.NewObjectID()

	_, err := svc.SetActive(context.Background(), admin, admin, false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetRole(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, st)
	admin := primitive.NewObjectID()
	user := registerTestUser(t, svc, "promote@example.com", "")

	promoted, err := svc.SetRole(context.Background(), admin, user.ID, models.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, promoted.Role)

	_, err = svc.SetRole(context.Background(), admin, user.ID, "superuser")
	assert.ErrorIs(t, err, ErrValidation)

	// Administrators cannot demote themselves.
	_, err = svc.SetRole(context.Background(), admin, admin, models.RoleCustomer)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetRole(context.Background(), admin, primitive.NewObjectID(), models.RoleSeller)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersListStripsPasswords(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, st)
	registerTestUser(t, svc, "one@example.com", "")
	registerTestUser(t, svc, "two@example.com", "")

	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}
}

func TestWishlist(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, st)
	user := registerTestUser(t, svc, "wish@example.com", "")
	productA := newTestProduct(t, st, "productA", 10, 5)
	productB := newTestProduct(t, st, "productB", 20, 5)

	require.NoError(t, svc.AddToWishlist(context.Background(), user.ID, productA))
	require.NoError(t, svc.AddToWishlist(context.Background(), user.ID, productB))
	// Adding twice keeps a single entry.
	require.NoError(t, svc.AddToWishlist(context.Background(), user.ID, productA))

	products, err := svc.Wishlist(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	// Deleted products vanish from the view.
	require.NoError(t, st.SoftDeleteProduct(context.Background(), productB))
	products, err = svc.Wishlist(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "productA", products[0].Name)

	require.NoError(t, svc.RemoveFromWishlist(context.Background(), user.ID, productA))
	products, err = svc.Wishlist(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, products)
}
