package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-marketplace/models"
	"go-marketplace/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// Capability names an operation class gated by role. Roles map to
// capabilities in one table here instead of per-handler role comparisons.
type Capability string

const (
	CapManageProducts    Capability = "manage_products"
	CapManageCategories  Capability = "manage_categories"
	CapManageUsers       Capability = "manage_users"
	CapUpdateOrderStatus Capability = "update_order_status"
	CapSellerDashboard   Capability = "seller_dashboard"
)

var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleCustomer: {},
	models.RoleSeller: {
		CapManageProducts:    true,
		CapUpdateOrderStatus: true,
		CapSellerDashboard:   true,
	},
	models.RoleAdministrator: {
		CapManageProducts:    true,
		CapManageCategories:  true,
		CapManageUsers:       true,
		CapUpdateOrderStatus: true,
		CapSellerDashboard:   true,
	},
}

// Allowed reports whether the role grants the capability.
func Allowed(role models.Role, cap Capability) bool {
	return roleCapabilities[role][cap]
}

// AuthMiddleware verifies JWT tokens and attaches user information to the context
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		// Attach user information to the request context
		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability gates a route on the capability table. Requires
// AuthMiddleware to have already run.
func RequireCapability(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !Allowed(claims.Role, cap) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext extracts the authenticated claims from the request context.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}
