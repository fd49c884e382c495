package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category represents a catalog category. Categories form a tree through the
// optional Parent reference; the subcategory list is derived by reverse
// lookup on Parent, never stored.
type Category struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string              `bson:"name" json:"name"`
	Description   string              `bson:"description" json:"description"`
	Slug          string              `bson:"slug" json:"slug"`
	Parent        *primitive.ObjectID `bson:"parent,omitempty" json:"parent,omitempty"`
	IsActive      bool                `bson:"is_active" json:"is_active"`
	FeaturedOrder int                 `bson:"featured_order" json:"featured_order"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
}

// Slugify derives a URL slug from a category or product name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
