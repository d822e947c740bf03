package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("CATALOG_DB_USER", "catalog_user")
	t.Setenv("CATALOG_DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.Engine.ResultCacheTTL)
	assert.Equal(t, 50, cfg.Engine.BrandListLimit)
	assert.Equal(t, ":9400", cfg.HTTP.Addr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("CATALOG_DB_USER", "u")
	t.Setenv("CATALOG_DB_PASSWORD", "p")
	t.Setenv("ENGINE_RESULT_CACHE_TTL", "30s")
	t.Setenv("ENGINE_BRAND_LIST_LIMIT", "10")
	t.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Engine.ResultCacheTTL)
	assert.Equal(t, 10, cfg.Engine.BrandListLimit)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadInvalidOverridesFallBack(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("CATALOG_DB_USER", "u")
	t.Setenv("CATALOG_DB_PASSWORD", "p")
	t.Setenv("ENGINE_RESULT_CACHE_TTL", "not-a-duration")
	t.Setenv("ENGINE_BRAND_LIST_LIMIT", "-3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Engine.ResultCacheTTL)
	assert.Equal(t, 50, cfg.Engine.BrandListLimit)
}

func TestDatabaseURL(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: "5432", Name: "catalog",
		User: "u", Password: "p", SSLMode: "require",
	}
	assert.Equal(t, "postgres://u:p@db:5432/catalog?sslmode=require", cfg.URL())
}
