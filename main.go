// main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-marketplace/config"
	"go-marketplace/controllers"
	"go-marketplace/routes"
	"go-marketplace/seed"
	"go-marketplace/services"
	"go-marketplace/store"
	"go-marketplace/utils"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err)
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	st, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			sugar.Errorw("database disconnect error", "error", err)
		}
	}()

	// Bootstrap admin account and root categories
	if err := seed.Run(ctx, cfg, st, sugar); err != nil {
		sugar.Fatalw("seed error", "error", err)
	}

	// Initialize services
	emailService := utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender)
	userService := services.NewUserService(st, st)
	cartService := services.NewCartService(st, st)
	checkoutService := services.NewCheckoutService(st, st, sugar)
	orderService := services.NewOrderService(st, st)
	catalogService := services.NewCatalogService(st, st)
	reviewService := services.NewReviewService(st, st)

	// Initialize controllers
	userController := controllers.NewUserController(userService, sugar)
	productController := controllers.NewProductController(catalogService, reviewService, sugar)
	categoryController := controllers.NewCategoryController(catalogService, sugar)
	cartController := controllers.NewCartController(cartService, sugar)
	orderController := controllers.NewOrderController(checkoutService, orderService, userService, emailService, sugar)
	sellerController := controllers.NewSellerController(catalogService, orderService, sugar)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, productController, categoryController, cartController, orderController, sellerController)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting marketplace server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
