// Package config reads application configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration. Values come from the environment,
// with a .env file loaded first when present.
type Config struct {
	Port          string `env:"PORT" envDefault:"8000"`
	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"marketplace"`
	JWTSecret     string `env:"JWT_SECRET,required"`

	PostmarkToken string `env:"POSTMARK_API_TOKEN"`
	EmailSender   string `env:"EMAIL_SENDER"`

	// Seed settings: when the admin pair is set, an administrator account is
	// created on startup if missing. SeedCategories lists root category
	// names to create idempotently.
	SeedAdminEmail    string   `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string   `env:"SEED_ADMIN_PASSWORD"`
	SeedCategories    []string `env:"SEED_CATEGORIES" envSeparator:","`
}

// Load reads the .env file (if any) and parses the environment.
func Load() (*Config, error) {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
