package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/controller"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/internal/app/service"
	"github.com/krishnakath/dairyshop-backend/internal/db"
	"github.com/krishnakath/dairyshop-backend/internal/middleware"
	"github.com/krishnakath/dairyshop-backend/internal/router"
	"github.com/krishnakath/dairyshop-backend/internal/scheduler"
	"github.com/krishnakath/dairyshop-backend/internal/storage"
	"github.com/krishnakath/dairyshop-backend/internal/websocket"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"github.com/krishnakath/dairyshop-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting DAIRYSHOP Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs guest carts and the token blacklist. The server still
	// boots without it, with those features degraded.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, guest carts and token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	feedbackRepo := repository.NewFeedbackRepository(db.GetDB())
	sessionStore := repository.NewSessionCartStore(redis.GetClient(), cfg.Session.TTL)

	// Websocket hub feeding the admin dashboard
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo, cfg.Catalog)
	recommendationService := service.NewRecommendationService(productRepo, cfg.Recommender)
	cartService := service.NewCartService(cartRepo, sessionStore, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, db.GetDB(), hub)
	invoiceService := service.NewInvoiceService("Shree Dairy", "14 Market Road, Pune")
	reportService := service.NewReportService(orderRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo)

	// S3 storage for payment proofs and product images
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService, cartService)
	productController := controller.NewProductController(productService, recommendationService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService, invoiceService)
	adminController := controller.NewAdminController(orderService, productService, reportService, feedbackService)
	feedbackController := controller.NewFeedbackController(feedbackService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Periodic jobs: model reloads and low stock scans
	catalogScheduler := scheduler.NewCatalogScheduler(recommendationService, productService, cfg.Recommender)
	if err := catalogScheduler.Start(); err != nil {
		logger.Error("Failed to start catalog scheduler", err)
	}
	defer catalogScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		cartController,
		orderController,
		adminController,
		feedbackController,
		uploadController,
		authMiddleware,
		hub,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
