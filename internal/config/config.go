// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"money-transfer-api/pkg/db"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	AppEnv     string
	DB         db.Config

	JWTSecret    string
	JWTExpiresIn time.Duration
	BcryptCost   int

	TransferLimit    decimal.Decimal
	GatewayBaseURL   string
	GatewaySecretKey string
	GatewayTimeout   time.Duration
	WebhookSecret    string

	RabbitMQURL               string
	TransactionEventsExchange string
	RedisURL                  string
	IdempotencyTTL            time.Duration
	AuthRateLimitPerMinute    int
	CORSAllowedOrigins        []string
}

// IsDevelopment reports whether the service runs with APP_ENV=development.
func (c *AppConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// LoadConfig loads configuration from environment variables and an optional
// .env file under path. It returns an error if a required variable is missing or invalid.
func LoadConfig(path string) (*AppConfig, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "money_transfer")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("JWT_EXPIRES_IN", "24h")
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("TRANSFER_LIMIT", "10000")
	viper.SetDefault("GATEWAY_TIMEOUT", "15s")
	viper.SetDefault("TRANSACTION_EVENTS_EXCHANGE", "transaction_events")
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("AUTH_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	for _, key := range []string{
		"JWT_SECRET", "GATEWAY_BASE_URL", "GATEWAY_SECRET_KEY",
		"WEBHOOK_SECRET", "RABBITMQ_URL", "REDIS_URL",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("failed to read config file; using environment values", "error", err)
		}
	}

	jwtSecret := strings.TrimSpace(viper.GetString("JWT_SECRET"))
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	webhookSecret := strings.TrimSpace(viper.GetString("WEBHOOK_SECRET"))
	if webhookSecret == "" {
		return nil, errors.New("WEBHOOK_SECRET is required")
	}

	transferLimit, err := decimal.NewFromString(strings.TrimSpace(viper.GetString("TRANSFER_LIMIT")))
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSFER_LIMIT: %w", err)
	}
	if !transferLimit.IsPositive() {
		return nil, fmt.Errorf("invalid TRANSFER_LIMIT: must be positive, got %s", transferLimit)
	}

	jwtTTL, err := parseDuration("JWT_EXPIRES_IN")
	if err != nil {
		return nil, err
	}
	gatewayTimeout, err := parseDuration("GATEWAY_TIMEOUT")
	if err != nil {
		return nil, err
	}
	idempotencyTTL, err := parseDuration("IDEMPOTENCY_TTL")
	if err != nil {
		return nil, err
	}

	bcryptCost := viper.GetInt("BCRYPT_COST")
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid BCRYPT_COST: must be between %d and %d, got %q",
			bcrypt.MinCost, bcrypt.MaxCost, viper.GetString("BCRYPT_COST"))
	}

	dbPort := viper.GetInt("DB_PORT")
	if dbPort <= 0 {
		return nil, fmt.Errorf("invalid DB_PORT: %q", viper.GetString("DB_PORT"))
	}

	return &AppConfig{
		ServerPort: viper.GetString("SERVER_PORT"),
		AppEnv:     strings.ToLower(strings.TrimSpace(viper.GetString("APP_ENV"))),
		DB: db.Config{
			Host:     viper.GetString("DB_HOST"),
			Port:     dbPort,
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWTSecret:                 jwtSecret,
		JWTExpiresIn:              jwtTTL,
		BcryptCost:                bcryptCost,
		TransferLimit:             transferLimit,
		GatewayBaseURL:            strings.TrimRight(strings.TrimSpace(viper.GetString("GATEWAY_BASE_URL")), "/"),
		GatewaySecretKey:          viper.GetString("GATEWAY_SECRET_KEY"),
		GatewayTimeout:            gatewayTimeout,
		WebhookSecret:             webhookSecret,
		RabbitMQURL:               strings.TrimSpace(viper.GetString("RABBITMQ_URL")),
		TransactionEventsExchange: viper.GetString("TRANSACTION_EVENTS_EXCHANGE"),
		RedisURL:                  strings.TrimSpace(viper.GetString("REDIS_URL")),
		IdempotencyTTL:            idempotencyTTL,
		AuthRateLimitPerMinute:    viper.GetInt("AUTH_RATE_LIMIT_PER_MINUTE"),
		CORSAllowedOrigins:        splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
	}, nil
}

func parseDuration(key string) (time.Duration, error) {
	raw := strings.TrimSpace(viper.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %s", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
