package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"hotelier/internal/cache"
	"hotelier/internal/database"
	"hotelier/internal/messaging"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	CORSOrigins    []string

	Database      database.Config
	NATS          messaging.Config
	Redis         cache.Config
	Elasticsearch ElasticsearchConfig
	Session       SessionConfig
	Loyalty       LoyaltyConfig
	Billing       BillingConfig
	Booking       BookingConfig
	RateLimit     RateLimitConfig
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// LoyaltyConfig fixes the earn rate once at startup
type LoyaltyConfig struct {
	PointsPerCurrencyUnit int64
}

type BillingConfig struct {
	TaxPercent int64
}

type BookingConfig struct {
	PendingHold    time.Duration
	ExpirySchedule string
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		CORSOrigins:    getEnvList("CORS_ALLOWED_ORIGINS"),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "hotelier"),
			Password:           getEnv("DB_PASSWORD", "hotelier"),
			DBName:             getEnv("DB_NAME", "hotelier"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", true),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "hotelier"),
			ClientID:  getEnv("NATS_CLIENT_ID", "hotelier-api"),
		},

		Redis: cache.Config{
			Enabled:   getEnvBool("REDIS_ENABLED", true),
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			RatingTTL: time.Duration(getEnvInt("RATING_CACHE_TTL_SEC", 600)) * time.Second,
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "change-me"),
			TTL:    time.Duration(getEnvInt("SESSION_TTL_MIN", 24*60)) * time.Minute,
		},

		Loyalty: LoyaltyConfig{
			PointsPerCurrencyUnit: int64(getEnvInt("LOYALTY_POINTS_PER_CURRENCY_UNIT", 10000)),
		},

		Billing: BillingConfig{
			TaxPercent: int64(getEnvInt("BILLING_TAX_PERCENT", 10)),
		},

		Booking: BookingConfig{
			PendingHold:    time.Duration(getEnvInt("BOOKING_PENDING_HOLD_MIN", 30)) * time.Minute,
			ExpirySchedule: getEnv("BOOKING_EXPIRY_SCHEDULE", "@every 1m"),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 20),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 40),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
