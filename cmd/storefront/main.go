package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/auth"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/cart"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/cart/cache"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/catalog"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/checkout"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	internalhttp "github.com/DMHCAIT/Bag-kibana-sub000/internal/http"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/notification"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/order"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/payment"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/profile"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/tracking"
)

type Config struct {
	HTTPPort string

	PostgresHost       string
	PostgresPort       int
	PostgresUser       string
	PostgresPassword   string
	PostgresDB         string
	PostgresMigrations string

	SQLitePath       string
	SQLiteMigrations string

	MongoURI string
	MongoDB  string

	RedisAddr string

	KafkaBrokers []string

	GatewayBaseURL   string
	GatewayKeyID     string
	GatewayKeySecret string

	JWTSecret string
	LoginCode string

	DiscountRate float64
	DiscountCode string
	Currency     string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		PostgresHost:       getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:       getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:       getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:         getEnv("POSTGRES_DB", "storefront"),
		PostgresMigrations: getEnv("POSTGRES_MIGRATIONS_DIR", "migrations/postgres"),

		SQLitePath:       getEnv("CATALOG_DB_PATH", "catalog.db"),
		SQLiteMigrations: getEnv("CATALOG_MIGRATIONS_DIR", "migrations/sqlite"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "storefront"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),

		GatewayBaseURL:   getEnv("PAYMENT_GATEWAY_URL", "https://api.razorpay.com"),
		GatewayKeyID:     getEnv("PAYMENT_GATEWAY_KEY_ID", "rzp_test_key"),
		GatewayKeySecret: getEnv("PAYMENT_GATEWAY_KEY_SECRET", "rzp_test_secret"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		LoginCode: getEnv("LOGIN_STATIC_CODE", "000000"),

		DiscountRate: getEnvFloat("DISCOUNT_RATE", 0.30),
		DiscountCode: getEnv("DISCOUNT_CODE", "FLAT30"),
		Currency:     getEnv("CURRENCY", "INR"),

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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		log.Printf("invalid value for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := loadConfig()

	policy, err := domain.NewDiscountPolicy(cfg.DiscountRate, cfg.DiscountCode)
	if err != nil {
		log.Fatalf("invalid discount configuration: %v", err)
	}

	// Orders + checkout sessions share one Postgres pool.
	pgCred := &order.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.PostgresMigrations,
	}
	orderRepo, err := order.NewRepository(pgCred)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(pgCred); err != nil {
		log.Fatalf("failed to run postgres migrations: %v", err)
	}
	checkoutRepo := checkout.NewRepository(orderRepo.DB())

	catalogRepo, err := catalog.NewSQLiteRepository(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.SQLiteMigrations); err != nil {
		log.Fatalf("failed to run catalog migrations: %v", err)
	}

	mongoCtx, cancelMongo := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelMongo()
	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("mongo disconnect: %v", err)
		}
	}()
	mongoDB := mongoClient.Database(cfg.MongoDB)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	notifier := notification.NewKafkaNotifier(cfg.KafkaBrokers...)
	defer notifier.Close()

	gatewayClient, err := payment.NewHTTPClient(payment.Config{
		BaseURL:   cfg.GatewayBaseURL,
		KeyID:     cfg.GatewayKeyID,
		KeySecret: cfg.GatewayKeySecret,
	})
	if err != nil {
		log.Fatalf("failed to configure payment gateway client: %v", err)
	}

	profileRepo := profile.NewMongoRepository(mongoDB)
	authService := auth.NewService(profileRepo, auth.StaticVerifier{Code: cfg.LoginCode}, cfg.JWTSecret)

	cartService := cart.NewService(
		cart.NewMongoRepository(mongoDB),
		cache.NewRedisCache(redisClient),
		catalogRepo,
		cfg.Currency,
	)

	trackingStore := tracking.NewRedisStore(redisClient)

	checkoutService := checkout.NewService(
		checkoutRepo,
		cartService,
		profileRepo,
		orderRepo,
		gatewayClient,
		notifier,
		trackingStore,
		policy,
		cfg.Currency,
	)

	router := internalhttp.NewRouter(internalhttp.Handlers{
		Auth:     internalhttp.NewAuthHandler(authService),
		Products: internalhttp.NewProductHandler(catalogRepo),
		Cart:     internalhttp.NewCartHandler(cartService, cfg.RequestTimeout),
		Checkout: internalhttp.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		Orders:   internalhttp.NewOrdersHandler(orderRepo, cfg.RequestTimeout),
		Tracking: internalhttp.NewTrackingHandler(trackingStore),
		Verifier: authService,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server stopped")
}
