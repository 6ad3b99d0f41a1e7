package config_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"litshop/internal/config"
	applog "litshop/internal/log"
)

func TestLoad_Defaults(t *testing.T) {
	applog.SetOutput(io.Discard)
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_DSN", "LOG_FILE", "LOG_LEVEL", "SEED_DEMO",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "OTEL_ENDPOINT", "ORDER_TIMEOUT", "ORDER_RETRY_ATTEMPTS", "TEMPLATE_RELOAD"} {
		t.Setenv(k, "")
	}

	cfg := config.Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "litshop.db", cfg.DBDSN)
	assert.Equal(t, "./litshop.log", cfg.LogFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.SeedDemo)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "orders.placed", cfg.KafkaTopic)
	assert.Empty(t, cfg.OtelEndpoint)
	assert.Equal(t, 5*time.Second, cfg.OrderTimeout)
	assert.Equal(t, 3, cfg.OrderRetryAttempts)
	assert.False(t, cfg.TemplateReload)
}

func TestLoad_Overrides(t *testing.T) {
	applog.SetOutput(io.Discard)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "PGX")
	t.Setenv("DB_DSN", "postgres://shop@localhost/shop")
	t.Setenv("SEED_DEMO", "false")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("KAFKA_TOPIC", "shop.orders")
	t.Setenv("OTEL_ENDPOINT", "localhost:4318")
	t.Setenv("ORDER_TIMEOUT", "750ms")
	t.Setenv("ORDER_RETRY_ATTEMPTS", "5")
	t.Setenv("TEMPLATE_RELOAD", "true")

	cfg := config.Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, "postgres://shop@localhost/shop", cfg.DBDSN)
	assert.False(t, cfg.SeedDemo)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "shop.orders", cfg.KafkaTopic)
	assert.Equal(t, "localhost:4318", cfg.OtelEndpoint)
	assert.Equal(t, 750*time.Millisecond, cfg.OrderTimeout)
	assert.Equal(t, 5, cfg.OrderRetryAttempts)
	assert.True(t, cfg.TemplateReload)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	applog.SetOutput(io.Discard)
	t.Setenv("SEED_DEMO", "maybe")
	t.Setenv("ORDER_TIMEOUT", "soon")
	t.Setenv("ORDER_RETRY_ATTEMPTS", "-1")
	t.Setenv("TEMPLATE_RELOAD", "sometimes")

	cfg := config.Load()
	assert.True(t, cfg.SeedDemo)
	assert.False(t, cfg.TemplateReload)
	assert.Equal(t, 5*time.Second, cfg.OrderTimeout)
	assert.Equal(t, 3, cfg.OrderRetryAttempts)
}
