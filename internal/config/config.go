package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	applog "litshop/internal/log"
)

type Config struct {
	Port     string
	DBDriver string
	DBDSN    string
	LogFile  string
	LogLevel string
	SeedDemo bool

	KafkaBrokers []string
	KafkaTopic   string

	OtelEndpoint string

	OrderTimeout       time.Duration
	OrderRetryAttempts int

	// TemplateReload re-parses HTML templates on every render; development only.
	TemplateReload bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "litshop.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./litshop.log"
	}
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "orders.placed"
	}

	cfg := Config{
		Port:               port,
		DBDriver:           driver,
		DBDSN:              dsn,
		LogFile:            logFile,
		LogLevel:           level,
		SeedDemo:           boolEnv("SEED_DEMO", true),
		KafkaBrokers:       listEnv("KAFKA_BROKERS"),
		KafkaTopic:         topic,
		OtelEndpoint:       os.Getenv("OTEL_ENDPOINT"),
		OrderTimeout:       durationEnv("ORDER_TIMEOUT", 5*time.Second),
		OrderRetryAttempts: intEnv("ORDER_RETRY_ATTEMPTS", 3),
		TemplateReload:     boolEnv("TEMPLATE_RELOAD", false),
	}
	applog.Info(nil, "config.loaded", map[string]any{
		"port":            cfg.Port,
		"db_driver":       cfg.DBDriver,
		"log_file":        cfg.LogFile,
		"seed_demo":       cfg.SeedDemo,
		"kafka_brokers":   strings.Join(cfg.KafkaBrokers, ","),
		"kafka_topic":     cfg.KafkaTopic,
		"otel_enabled":    cfg.OtelEndpoint != "",
		"order_timeout":   cfg.OrderTimeout.String(),
		"order_attempts":  cfg.OrderRetryAttempts,
		"template_reload": cfg.TemplateReload,
	})
	return cfg
}

func boolEnv(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		applog.Security(nil, "config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		applog.Security(nil, "config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		applog.Security(nil, "config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func listEnv(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
