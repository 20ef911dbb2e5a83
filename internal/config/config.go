package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"

	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	HTTPPort  string
	LogLevel  slog.Level
	LogFormat string

	CartNamespace  string
	StorageBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	MongoURI       string
	MongoDatabase  string

	OrderBackend   string
	CatalogBackend string

	// Hosted PostgREST backend
	BackendURL     string
	BackendAPIKey  string
	BackendTimeout time.Duration

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	SQLitePath string

	JWTSecret string

	KafkaBrokers []string
	KafkaTopic   string

	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CartNamespace:  getEnv("CART_NAMESPACE", "pottery-cart"),
		StorageBackend: getEnv("STORAGE_BACKEND", StorageMemory),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "storefront"),

		OrderBackend:   getEnv("ORDER_BACKEND", BackendREST),
		CatalogBackend: getEnv("CATALOG_BACKEND", BackendREST),

		BackendURL:    getEnv("BACKEND_URL", ""),
		BackendAPIKey: getEnv("BACKEND_API_KEY", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "storefront"),

		SQLitePath: getEnv("SQLITE_PATH", "catalog.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		KafkaBrokers: splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-orders"),
	}

	var errs []error
	cfg.RedisDB = parseInt("REDIS_DB", 0, &errs)
	cfg.DBPort = parseInt("DB_PORT", 5432, &errs)
	cfg.MaxRequestBodySize = int64(parseInt("MAX_REQUEST_BODY_BYTES", 1<<20, &errs))
	cfg.BackendTimeout = parseDuration("BACKEND_TIMEOUT", 10*time.Second, &errs)
	cfg.RequestTimeout = parseDuration("REQUEST_TIMEOUT", 30*time.Second, &errs)
	cfg.ShutdownTimeout = parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs)

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	if !oneOf(c.StorageBackend, StorageMemory, StorageRedis, StorageMongo) {
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND: unknown backend %q", c.StorageBackend))
	}
	if !oneOf(c.OrderBackend, BackendREST, BackendPostgres) {
		errs = append(errs, fmt.Errorf("ORDER_BACKEND: unknown backend %q", c.OrderBackend))
	}
	if !oneOf(c.CatalogBackend, BackendREST, BackendSQLite) {
		errs = append(errs, fmt.Errorf("CATALOG_BACKEND: unknown backend %q", c.CatalogBackend))
	}
	if c.UsesREST() && c.BackendURL == "" {
		errs = append(errs, errors.New("BACKEND_URL is required when orders or catalog use the rest backend"))
	}
	if len(c.JWTSecret) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET is required and must be at least %d bytes", auth.MinSecretLength))
	}
	if !oneOf(c.LogFormat, "json", "text") {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: expected json or text, got %q", c.LogFormat))
	}
	return errs
}

func (c *Config) UsesREST() bool {
	return c.OrderBackend == BackendREST || c.CatalogBackend == BackendREST
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, def int, errs *[]error) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func parseDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
