package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vibecommerce/storefront/internal/assistant"
	"github.com/vibecommerce/storefront/internal/cache"
	"github.com/vibecommerce/storefront/internal/catalog"
	"github.com/vibecommerce/storefront/internal/checkout"
	h "github.com/vibecommerce/storefront/internal/http"
	"github.com/vibecommerce/storefront/internal/notify"
	"github.com/vibecommerce/storefront/internal/orders"
	"github.com/vibecommerce/storefront/internal/publisher"
	"github.com/vibecommerce/storefront/internal/repository"
	"github.com/vibecommerce/storefront/internal/reviews"
	"github.com/vibecommerce/storefront/internal/service"
	"github.com/vibecommerce/storefront/internal/wishlist"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	CatalogDBPath   string
	CatalogMigrPath string
	OrdersMigrPath  string
	PostgresHost    string
	PostgresPort    int
	PostgresUser    string
	PostgresPass    string
	PostgresDB      string
	KafkaBrokers    string
	GeminiAPIKey    string
	GeminiModel     string
	SendGridAPIKey  string
	EmailFromName   string
	EmailFromAddr   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		log.Fatalf("invalid POSTGRES_PORT: %v", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CatalogDBPath:   getEnv("CATALOG_DB_PATH", "catalog.db"),
		CatalogMigrPath: getEnv("CATALOG_MIGRATIONS_PATH", "migrations/catalog"),
		OrdersMigrPath:  getEnv("ORDERS_MIGRATIONS_PATH", "migrations/orders"),
		PostgresHost:    getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:    pgPort,
		PostgresUser:    getEnv("POSTGRES_USER", "postgres"),
		PostgresPass:    getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:      getEnv("POSTGRES_DB", "storefront"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", "localhost:9092"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", ""),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "Vibe Commerce"),
		EmailFromAddr:   getEnv("EMAIL_FROM_ADDR", "orders@vibecommerce.example"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := loadConfig()
	ctx := context.Background()

	// MongoDB holds carts, wishlists and reviews.
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	cartRepo, err := repository.NewMongoRepository(ctx, mongoDB)
	if err != nil {
		log.Fatalf("Failed to prepare carts collection: %v", err)
	}
	wishlistRepo := wishlist.NewMongoRepository(mongoDB)
	reviewRepo := reviews.NewMongoRepository(mongoDB)
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	// SQLite catalog with seed data applied via migrations.
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.CatalogMigrPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}
	log.Printf("Catalog ready at %s", cfg.CatalogDBPath)

	// Postgres order ledger with its outbox.
	orderCreds := &orders.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPass,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.OrdersMigrPath,
	}
	orderRepo, err := orders.NewPostgresRepository(orderCreds)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(orderCreds); err != nil {
		log.Fatalf("Failed to run orders migrations: %v", err)
	}
	log.Printf("Connected to postgres at %s:%d", cfg.PostgresHost, cfg.PostgresPort)

	cartCache := cache.NewRedisCache(redisClient)
	cartService := service.NewCartService(cartRepo, cartCache, catalogRepo)

	var sender checkout.Sender = notify.NoopSender{}
	if cfg.SendGridAPIKey != "" {
		sender = notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFromName, cfg.EmailFromAddr)
	} else {
		log.Printf("SENDGRID_API_KEY not set, order confirmations disabled")
	}
	checkoutService := checkout.NewService(cartService, orderRepo, sender)

	var generator assistant.TextGenerator
	if cfg.GeminiAPIKey != "" {
		generator = assistant.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		log.Printf("GEMINI_API_KEY not set, AI assistant disabled")
	}
	shopAssistant := assistant.NewAssistant(catalogRepo, generator)

	// Outbox poller pushes order-completed events to Kafka.
	pollerCtx, stopPoller := context.WithCancel(ctx)
	poller := publisher.NewOutboxPoller(orderRepo, cfg.KafkaBrokers)
	go poller.Run(pollerCtx)

	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(catalogRepo, cfg.RequestTimeout)
	wishlistHandler := h.NewWishlistHandler(wishlistRepo, catalogRepo, cfg.RequestTimeout)
	reviewHandler := h.NewReviewHandler(reviewRepo, catalogRepo, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	assistantHandler := h.NewAssistantHandler(shopAssistant, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.AddItem)
			r.Post("/merge", cartHandler.Merge)
			r.Delete("/", cartHandler.ClearCart)
			r.Put("/{itemId}", cartHandler.UpdateQuantity)
			r.Delete("/{itemId}", cartHandler.RemoveItem)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/search", productHandler.Search)
			r.Get("/{id}", productHandler.Get)
			r.Get("/{id}/similar", productHandler.Similar)
		})
		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.Get)
			r.Post("/", wishlistHandler.AddItem)
			r.Delete("/{itemId}", wishlistHandler.RemoveItem)
		})
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/{productId}", reviewHandler.ListByProduct)
			r.Post("/", reviewHandler.Add)
			r.Put("/{reviewId}/helpful", reviewHandler.MarkHelpful)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Checkout)
			r.Get("/orders", checkoutHandler.ListOrders)
		})
		r.Post("/ai/chat", assistantHandler.Chat)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	stopPoller()
	if err := poller.Close(); err != nil {
		log.Printf("failed to close kafka writer: %v", err)
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Printf("failed to disconnect mongo: %v", err)
	}

	log.Println("server exited")
}
