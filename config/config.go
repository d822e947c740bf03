package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Engine   EngineConfig
	HTTP     HTTPConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timeout  time.Duration
}

type RedisConfig struct {
	URL     string
	Timeout time.Duration
}

// EngineConfig carries the tunables of the facet query engine. Result and
// temp-key TTLs bound the staleness window; the brand cap bounds listing
// size; the count concurrency bounds facet-count fan-out.
type EngineConfig struct {
	ResultCacheTTL   time.Duration
	TempKeyTTL       time.Duration
	BrandListLimit   int
	CountConcurrency int
	IndexBatchSize   int
}

type HTTPConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnvRequired("DB_HOST"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			Name:     getEnvRequired("DB_NAME"),
			User:     getEnvRequired("CATALOG_DB_USER"),
			Password: getEnvRequired("CATALOG_DB_PASSWORD"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "prefer"),
			Timeout:  10 * time.Second,
		},
		Redis: RedisConfig{
			URL:     getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
			Timeout: 5 * time.Second,
		},
		Engine: EngineConfig{
			ResultCacheTTL:   getEnvDuration("ENGINE_RESULT_CACHE_TTL", 5*time.Minute),
			TempKeyTTL:       getEnvDuration("ENGINE_TEMP_KEY_TTL", 5*time.Minute),
			BrandListLimit:   getEnvInt("ENGINE_BRAND_LIST_LIMIT", 50),
			CountConcurrency: getEnvInt("ENGINE_COUNT_CONCURRENCY", 8),
			IndexBatchSize:   getEnvInt("ENGINE_INDEX_BATCH_SIZE", 200),
		},
		HTTP: HTTPConfig{
			Addr:              getEnvOrDefault("HTTP_ADDR", ":9400"),
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
	}

	slog.Info("configuration loaded",
		"db_host", cfg.Database.Host,
		"redis_url", cfg.Redis.URL,
		"http_addr", cfg.HTTP.Addr,
	)

	return cfg, nil
}

func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

func getEnvRequired(key string) string {
	// Secrets may be provided through files, referenced by a _FILE env var.
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
		slog.Warn("invalid integer env value, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		slog.Warn("invalid duration env value, using default", "key", key, "value", value)
	}
	return defaultValue
}
