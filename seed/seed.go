// Package seed bootstraps the initial administrator account and root
// categories. Runs on startup, is idempotent, and is driven entirely by
// configuration: no credentials live in code.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-marketplace/config"
	"go-marketplace/models"
	"go-marketplace/store"
)

// Run applies the configured seed data. Existing records are left alone.
func Run(ctx context.Context, cfg *config.Config, st store.Store, log *zap.SugaredLogger) error {
	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if err := seedAdmin(ctx, cfg, st, log); err != nil {
			return err
		}
	}
	for _, name := range cfg.SeedCategories {
		if err := seedCategory(ctx, strings.TrimSpace(name), st, log); err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, cfg *config.Config, st store.Store, log *zap.SugaredLogger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))

	_, err := st.UserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed admin hash: %w", err)
	}

	admin := &models.User{
		Username:     "admin",
		Email:        email,
		Password:     string(hashed),
		Role:         models.RoleAdministrator,
		IsActive:     true,
		Cart:         []models.CartItem{},
		OrderHistory: []models.Order{},
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := st.CreateUser(ctx, admin); err != nil {
		// A concurrent instance may have created it first.
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("seed admin create: %w", err)
	}
	log.Infow("seeded administrator account", "email", email)
	return nil
}

func seedCategory(ctx context.Context, name string, st store.Store, log *zap.SugaredLogger) error {
	if name == "" {
		return nil
	}
	slug := models.Slugify(name)

	_, err := st.CategoryBySlug(ctx, slug)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("seed category lookup: %w", err)
	}

	category := &models.Category{
		Name:      name,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := st.CreateCategory(ctx, category); err != nil {
		return fmt.Errorf("seed category create: %w", err)
	}
	log.Infow("seeded category", "name", name)
	return nil
}
