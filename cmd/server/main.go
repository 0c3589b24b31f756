package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vastrakart/vastrakart-backend/config"
	"github.com/vastrakart/vastrakart-backend/internal/app/controller"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	"github.com/vastrakart/vastrakart-backend/internal/db"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
	"github.com/vastrakart/vastrakart-backend/internal/router"
	"github.com/vastrakart/vastrakart-backend/internal/scheduler"
	"github.com/vastrakart/vastrakart-backend/internal/storage"
	"github.com/vastrakart/vastrakart-backend/pkg/courier"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"github.com/vastrakart/vastrakart-backend/pkg/payment/phonepe"
	"github.com/vastrakart/vastrakart-backend/pkg/redis"
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

	logger.Info("Starting VASTRAKART Backend Server", map[string]interface{}{
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

	// Redis backs the token blacklist, serviceability cache and checkout lock.
	// The server still runs without it, with those features degraded.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, caching and checkout locking disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// External clients
	courierClient, err := courier.NewClient(courier.Config{
		BaseURL:   cfg.Courier.BaseURL,
		APIToken:  cfg.Courier.APIToken,
		OriginPin: cfg.Courier.OriginPin,
	})
	if err != nil {
		logger.Fatal("Failed to initialize courier client", err)
	}

	phonepeClient, err := phonepe.NewClient(phonepe.Config{
		BaseURL:     cfg.Payment.PhonePe.BaseURL,
		MerchantID:  cfg.Payment.PhonePe.MerchantID,
		SaltKey:     cfg.Payment.PhonePe.SaltKey,
		SaltIndex:   cfg.Payment.PhonePe.SaltIndex,
		RedirectURL: cfg.Payment.PhonePe.RedirectURL,
		CallbackURL: cfg.Payment.PhonePe.CallbackURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize payment client", err)
	}

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	cache := redis.NewCache()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	wishlistRepo := repository.NewWishlistRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, cache)
	addressService := service.NewAddressService(addressRepo)
	shippingService := service.NewShippingService(courierClient, productRepo, cache, cfg.Courier.OriginPin)
	checkoutService := service.NewCheckoutService(
		db.GetDB(),
		cartRepo,
		addressRepo,
		productRepo,
		orderRepo,
		shippingService,
		phonepeClient,
		cache,
		cache,
	)
	orderService := service.NewOrderService(orderRepo)
	paymentService := service.NewPaymentService(db.GetDB(), orderRepo, phonepeClient)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	addressController := controller.NewAddressController(addressService)
	shippingController := controller.NewShippingController(shippingService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	orderController := controller.NewOrderController(orderService)
	paymentController := controller.NewPaymentController(paymentService)
	wishlistController := controller.NewWishlistController(wishlistService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the payment reconciliation sweep
	paymentScheduler := scheduler.NewPaymentScheduler(paymentService)
	if err := paymentScheduler.Start(); err != nil {
		logger.Fatal("Failed to start payment scheduler", err)
	}
	defer paymentScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		cartController,
		addressController,
		shippingController,
		checkoutController,
		orderController,
		paymentController,
		wishlistController,
		uploadController,
		authMiddleware,
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
