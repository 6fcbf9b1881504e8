package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/driveline/carstore-api/internal/config"
	"github.com/driveline/carstore-api/internal/events"
	"github.com/driveline/carstore-api/internal/handler"
	"github.com/driveline/carstore-api/internal/middleware"
	"github.com/driveline/carstore-api/internal/migrate"
	"github.com/driveline/carstore-api/internal/repository"
	"github.com/driveline/carstore-api/internal/service"
	"github.com/driveline/carstore-api/internal/session"
	"github.com/driveline/carstore-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	if err := migrate.Up(cfg.DB.DSN()); err != nil {
		log.Error("run migrations", "error", err)
		os.Exit(1)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := events.Setup(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)

	// Sessions and events
	sessions := session.NewStore(redisClient)
	publisher := events.NewPublisher(amqpCh)

	// Services
	directorySvc := service.NewDirectoryService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogSvc := service.NewCatalogService(productRepo, redisClient)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	ledgerSvc := service.NewLedgerService(orderRepo, productRepo, publisher)
	checkoutSvc, err := service.NewCheckoutService(orderRepo, cartRepo, productRepo, sessions, publisher, cfg.Checkout)
	if err != nil {
		log.Error("configure checkout", "error", err)
		os.Exit(1)
	}

	// Handlers
	authH := handler.NewAuthHandler(directorySvc)
	productH := handler.NewProductHandler(catalogSvc)
	cartH := handler.NewCartHandler(cartSvc)
	checkoutH := handler.NewCheckoutHandler(checkoutSvc)
	orderH := handler.NewOrderHandler(ledgerSvc)
	adminH := handler.NewAdminHandler(directorySvc, ledgerSvc)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	notifier := worker.NewNotifier(amqpCh, orderRepo, userRepo, redisClient, log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)

		products := v1.Group("/products")
		products.GET("", productH.List)

		trash := products.Group("/trash", middleware.AuthMiddleware(cfg.JWT.Secret), middleware.AdminOnly())
		trash.GET("", productH.ListTrash)
		trash.POST("/:id/restore", productH.Restore)
		trash.DELETE("/:id", productH.Purge)

		products.GET("/:id", productH.GetByID)
		products.POST("/:id/reviews", middleware.AuthMiddleware(cfg.JWT.Secret), productH.AddReview)

		adminProducts := products.Group("", middleware.AuthMiddleware(cfg.JWT.Secret), middleware.AdminOnly())
		adminProducts.POST("", productH.Create)
		adminProducts.PUT("/:id", productH.Update)
		adminProducts.DELETE("/:id", productH.SoftDelete)

		cart := v1.Group("/cart", middleware.AuthMiddleware(cfg.JWT.Secret))
		cart.GET("", cartH.GetCart)
		cart.POST("/items", cartH.AddItem)
		cart.PUT("/items/:productId", cartH.SetQuantity)
		cart.DELETE("/items/:productId", cartH.RemoveItem)

		checkout := v1.Group("/checkout", middleware.AuthMiddleware(cfg.JWT.Secret))
		checkout.POST("", checkoutH.Checkout)
		checkout.POST("/buy-now/:productId", checkoutH.StageBuyNow)

		orders := v1.Group("/orders", middleware.AuthMiddleware(cfg.JWT.Secret))
		orders.GET("", orderH.ListOrders)
		orders.GET("/cancelled", orderH.ListCancelled)
		orders.POST("/:id/cancel", orderH.Cancel)

		admin := v1.Group("/admin", middleware.AuthMiddleware(cfg.JWT.Secret), middleware.AdminOnly())
		admin.GET("/users", adminH.ListUsers)
		admin.PUT("/users/:id/block", adminH.SetBlocked)
		admin.GET("/orders", adminH.ListOrders)
	}

	if err := notifier.Start(ctx); err != nil {
		log.Error("start order notifier", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	notifier.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
