// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	router "money-transfer-api/internal/api"
	"money-transfer-api/internal/api/handler"
	"money-transfer-api/internal/api/middleware"
	"money-transfer-api/internal/auth"
	"money-transfer-api/internal/config"
	"money-transfer-api/internal/repository"
	"money-transfer-api/internal/repository/postgres"
	"money-transfer-api/internal/service"
	"money-transfer-api/internal/util"
	"money-transfer-api/pkg/db"
	"money-transfer-api/pkg/disbursement"
	"money-transfer-api/pkg/rabbitmq"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config    *config.AppConfig
	Logger    *slog.Logger
	DB        *sqlx.DB
	Redis     redis.UniversalClient
	Publisher rabbitmq.Publisher

	// Repositories
	UserRepository        repository.UserRepository
	TransactionRepository repository.TransactionRepository

	// Services
	AuthService        service.AuthService
	UserService        service.UserService
	TransactionService service.TransactionService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.AppEnv)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "env", cfg.AppEnv)

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Optional infrastructure
	app.Redis = app.connectRedis(ctx)
	app.Publisher = app.connectPublisher()

	// 5. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.Logger.Info("Repositories initialized.")

	// 6. Initialize Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	gateway := disbursement.NewClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey, cfg.GatewayTimeout, app.Logger)

	app.AuthService = service.NewAuthService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor
		app.UserRepository,
		tokens,
		cfg.BcryptCost,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.UserService = service.NewUserService(app.DB, app.UserRepository)
	app.TransactionService = service.NewTransactionService(
		app.DB,
		app.UserRepository,
		app.TransactionRepository,
		gateway,
		app.Publisher,
		app.Logger,
		service.TransactionConfig{
			TransferLimit:  cfg.TransferLimit,
			GatewayTimeout: cfg.GatewayTimeout,
			EventsExchange: cfg.TransactionEventsExchange,
		},
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	dev := cfg.IsDevelopment()
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(app.AuthService, app.Logger, dev),
		User:        handler.NewUserHandler(app.UserService, app.Logger, dev),
		Transaction: handler.NewTransactionHandler(app.TransactionService, app.Logger, dev),
		Webhook:     handler.NewWebhookHandler(app.TransactionService, cfg.WebhookSecret, app.Logger, dev),
	}
	authLimiter := middleware.NewRedisRateLimiter(app.Redis)
	middlewares := router.Middlewares{
		Authenticate:  middleware.Authenticate(tokens, app.UserService, app.Logger),
		Idempotency:   middleware.Idempotency(app.Redis, cfg.IdempotencyTTL, app.Logger),
		AuthRateLimit: middleware.RateLimit(authLimiter, "auth", cfg.AuthRateLimitPerMinute, time.Minute, app.Logger),
	}
	app.HTTPHandler = router.NewRouter(handlers, middlewares, cfg.CORSAllowedOrigins, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// connectRedis returns a client when REDIS_URL is set and reachable, nil otherwise.
// Without Redis, idempotency keys and auth rate limiting are disabled.
func (app *Application) connectRedis(ctx context.Context) redis.UniversalClient {
	if app.Config.RedisURL == "" {
		app.Logger.Info("REDIS_URL not set; idempotency and rate limiting disabled.")
		return nil
	}
	opts, err := redis.ParseURL(app.Config.RedisURL)
	if err != nil {
		app.Logger.Warn("Invalid REDIS_URL; idempotency and rate limiting disabled.", "error", err)
		return nil
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		app.Logger.Warn("Redis unreachable; idempotency and rate limiting disabled.", "error", err)
		_ = client.Close()
		return nil
	}
	app.Logger.Info("Redis connection established.")
	return client
}

// connectPublisher returns a broker-backed publisher, or a no-op one when
// RABBITMQ_URL is unset or the broker cannot be reached.
func (app *Application) connectPublisher() rabbitmq.Publisher {
	if app.Config.RabbitMQURL == "" {
		app.Logger.Info("RABBITMQ_URL not set; transaction events will not be published.")
		return &rabbitmq.NoopPublisher{Logger: app.Logger}
	}
	producer, err := rabbitmq.NewEventProducer(app.Config.RabbitMQURL, app.Logger)
	if err != nil {
		app.Logger.Warn("RabbitMQ unavailable; transaction events will not be published.", "error", err)
		return &rabbitmq.NoopPublisher{Logger: app.Logger}
	}
	app.Logger.Info("RabbitMQ producer connected.", "exchange", app.Config.TransactionEventsExchange)
	return producer
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Publisher != nil {
		app.Publisher.Close()
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Warn("Failed to close Redis client", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
