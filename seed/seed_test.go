package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-marketplace/config"
	"go-marketplace/models"
	"go-marketplace/store"
)

func TestRunSeedsAdminAndCategories(t *testing.T) {
	st := store.NewMemory()
	cfg := &config.Config{
		SeedAdminEmail:    "Admin@Example.com",
		SeedAdminPassword: "seed-password",
		SeedCategories:    []string{"Electronics", " Home & Garden "},
	}

	require.NoError(t, Run(context.Background(), cfg, st, zap.NewNop().Sugar()))

	admin, err := st.UserByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, admin.Role)
	assert.True(t, admin.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("seed-password")))

	for _, slug := range []string{"electronics", "home-garden"} {
		category, err := st.CategoryBySlug(context.Background(), slug)
		require.NoError(t, err, slug)
		assert.True(t, category.IsActive)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	st := store.NewMemory()
	cfg := &config.Config{
		SeedAdminEmail:    "admin@example.com",
		SeedAdminPassword: "seed-password",
		SeedCategories:    []string{"Electronics"},
	}

	require.NoError(t, Run(context.Background(), cfg, st, zap.NewNop().Sugar()))
	require.NoError(t, Run(context.Background(), cfg, st, zap.NewNop().Sugar()))

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)

	categories, err := st.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestRunWithoutSeedConfig(t *testing.T) {
	st := store.NewMemory()

	require.NoError(t, Run(context.Background(), &config.Config{}, st, zap.NewNop().Sugar()))

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}
