package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/logger"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	AppPort    string
	AppVersion string

	StorageDriver string
	DatabaseURL   string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
	AutoMigrate   bool

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit       int
	APIRateWindow      time.Duration
	AuthRateLimit      int
	AuthRateWindow     time.Duration
	MutationRateLimit  int
	MutationRateWindow time.Duration
	AllowedOrigin      string

	LogLevel string
	LogJSON  bool
}

// Load reads .env (if any) and the environment, exiting on invalid config.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppPort:       envOr("APP_PORT", "8080"),
		AppVersion:    envOr("APP_VERSION", "dev"),
		StorageDriver: strings.ToLower(envOr("STORAGE_DRIVER", DriverPostgres)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    envOr("SQLITE_PATH", "data/taskboard.db"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: envOr("MONGO_DATABASE", "taskboard"),
		AutoMigrate:   os.Getenv("AUTO_MIGRATE") == "true",

		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionTTL:   time.Duration(envInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		APIRateLimit:       envInt("API_RATE_LIMIT", 120),
		APIRateWindow:      envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
		AuthRateLimit:      envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:     envSeconds("AUTH_RATE_WINDOW_SECONDS", time.Minute),
		MutationRateLimit:  envInt("MUTATION_RATE_LIMIT", 60),
		MutationRateWindow: envSeconds("MUTATION_RATE_WINDOW_SECONDS", time.Minute),
		AllowedOrigin:      os.Getenv("ALLOWED_ORIGIN"),

		LogLevel: envOr("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is not set")
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt falls back to def for missing, malformed or negative values
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envSeconds(key string, def time.Duration) time.Duration {
	n := envInt(key, 0)
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
