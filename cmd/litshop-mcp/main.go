package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"litshop/internal/config"
	"litshop/internal/events"
	applog "litshop/internal/log"
	"litshop/internal/mcp"
	"litshop/internal/observability"
	"litshop/internal/repos"
	"litshop/internal/services"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("%s %s (build mode %s)\n", mcp.ServerName, version, repos.BuildMode)
		os.Exit(0)
	}

	// stdout is reserved for the MCP protocol
	applog.SetOutput(os.Stderr)
	cfg := config.Load()
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.Security(nil, "config.invalid", map[string]any{"key": "LOG_LEVEL", "value": cfg.LogLevel})
	}

	if err := run(cfg); err != nil && !errors.Is(err, context.Canceled) {
		applog.Error(nil, "mcp.exit", err, nil)
		_ = applog.Sync()
		os.Exit(1)
	}
	_ = applog.Sync()
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.SeedDemo {
		if err := repos.SeedDemo(ctx, db); err != nil {
			return err
		}
	}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	var pub events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := errors.Join(shutdownTracing(sctx), pub.Close()); err != nil {
			applog.Error(nil, "mcp.shutdown", err, nil)
		}
	}()

	orderRepo := repos.NewOrderRepo(db)
	orders := services.NewOrderService(repos.NewBookRepo(db), repos.NewBuyerRepo(db), orderRepo, pub)
	srv := mcp.NewServer(orders, services.NewStatisticsService(orderRepo),
		mcp.WithOrderTimeout(cfg.OrderTimeout),
		mcp.WithRetryAttempts(cfg.OrderRetryAttempts),
	)

	applog.Info(nil, "mcp.ready", map[string]any{"server": mcp.ServerName, "version": version, "db_driver": cfg.DBDriver})
	return srv.Serve(ctx)
}
