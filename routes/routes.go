// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"go-marketplace/controllers"
	"go-marketplace/middleware"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(
	router *mux.Router,
	userController *controllers.UserController,
	productController *controllers.ProductController,
	categoryController *controllers.CategoryController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	sellerController *controllers.SellerController,
) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")
	router.HandleFunc("/categories", categoryController.GetCategories).Methods("GET")
	router.HandleFunc("/categories/{id}", categoryController.GetCategoryByID).Methods("GET")

	// Authenticated routes
	auth := router.NewRoute().Subrouter()
	auth.Use(middleware.AuthMiddleware)
	auth.HandleFunc("/me", userController.GetProfile).Methods("GET")

	auth.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	auth.HandleFunc("/cart", cartController.AddToCart).Methods("POST")
	auth.HandleFunc("/cart/{productId}", cartController.SetQuantity).Methods("PUT")
	auth.HandleFunc("/cart/{productId}", cartController.RemoveFromCart).Methods("DELETE")

	auth.HandleFunc("/orders", orderController.CreateOrder).Methods("POST")
	auth.HandleFunc("/orders", orderController.GetOrders).Methods("GET")
	auth.HandleFunc("/orders/{id}", orderController.GetOrderByID).Methods("GET")

	auth.HandleFunc("/wishlist", userController.GetWishlist).Methods("GET")
	auth.HandleFunc("/wishlist/{productId}", userController.AddToWishlist).Methods("POST")
	auth.HandleFunc("/wishlist/{productId}", userController.RemoveFromWishlist).Methods("DELETE")

	auth.HandleFunc("/products/{id}/reviews", productController.AddReview).Methods("POST")
	auth.HandleFunc("/products/{id}/reviews/{reviewId}", productController.UpdateReview).Methods("PUT")
	auth.HandleFunc("/products/{id}/reviews/{reviewId}", productController.DeleteReview).Methods("DELETE")

	// Catalog management (seller or administrator)
	manage := router.NewRoute().Subrouter()
	manage.Use(middleware.AuthMiddleware)
	manage.Use(middleware.RequireCapability(middleware.CapManageProducts))
	manage.HandleFunc("/products", productController.CreateProduct).Methods("POST")
	manage.HandleFunc("/products/{id}", productController.UpdateProduct).Methods("PUT")
	manage.HandleFunc("/products/{id}", productController.DeleteProduct).Methods("DELETE")
	manage.HandleFunc("/products/{id}/status", productController.UpdateProductStatus).Methods("PUT")

	// Order status updates (seller or administrator)
	status := router.NewRoute().Subrouter()
	status.Use(middleware.AuthMiddleware)
	status.Use(middleware.RequireCapability(middleware.CapUpdateOrderStatus))
	status.HandleFunc("/orders/{id}", orderController.UpdateOrderStatus).Methods("PUT")

	// Seller dashboard
	seller := router.PathPrefix("/seller").Subrouter()
	seller.Use(middleware.AuthMiddleware)
	seller.Use(middleware.RequireCapability(middleware.CapSellerDashboard))
	seller.HandleFunc("/stats", sellerController.GetStats).Methods("GET")
	seller.HandleFunc("/products", sellerController.GetProducts).Methods("GET")
	seller.HandleFunc("/orders", sellerController.GetOrders).Methods("GET")
	seller.HandleFunc("/products/{productId}/stock", sellerController.UpdateStock).Methods("PUT")
	seller.HandleFunc("/discounts", sellerController.CreateDiscount).Methods("POST")
	seller.HandleFunc("/discounts", sellerController.GetDiscounts).Methods("GET")

	// Administration
	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.RequireCapability(middleware.CapManageUsers))
	admin.HandleFunc("/users", userController.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", userController.GetUser).Methods("GET")
	admin.HandleFunc("/users/{id}/role", userController.UpdateUserRole).Methods("PUT")
	admin.HandleFunc("/users/{id}/status", userController.UpdateUserStatus).Methods("PUT")
	admin.HandleFunc("/admin/orders", orderController.GetAllOrders).Methods("GET")
	admin.HandleFunc("/admin/stats", orderController.GetAdminStats).Methods("GET")

	categories := router.NewRoute().Subrouter()
	categories.Use(middleware.AuthMiddleware)
	categories.Use(middleware.RequireCapability(middleware.CapManageCategories))
	categories.HandleFunc("/categories", categoryController.CreateCategory).Methods("POST")
	categories.HandleFunc("/categories/{id}", categoryController.UpdateCategory).Methods("PUT")
	categories.HandleFunc("/categories/{id}", categoryController.DeleteCategory).Methods("DELETE")
}
