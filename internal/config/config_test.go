package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_DATA_DIR", "/tmp/pomonitor")

	cfg := load(viper.New())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/pomonitor/po_monitoring.db", cfg.Database.Path)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 60, cfg.Cache.DashboardTTLSeconds)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "po")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("STORAGE_ENDPOINT", "minio:9000")
	t.Setenv("STORAGE_BUCKET", "po-reports")

	cfg := load(viper.New())

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db.internal port=5432 user=postgres password=postgres dbname=po sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Storage.Enabled())
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("data/po.db")

	assert.True(t, strings.HasPrefix(dsn, "file:data/po.db?"))
	assert.Contains(t, dsn, "synchronous%28FULL%29")
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, AppConfig{Timezone: "Local"}.Location())
	assert.Equal(t, time.Local, AppConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", AppConfig{Timezone: "UTC"}.Location().String())
}
