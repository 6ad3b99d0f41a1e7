package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"litshop/internal/config"
	"litshop/internal/events"
	"litshop/internal/http/handlers"
	applog "litshop/internal/log"
	"litshop/internal/observability"
	"litshop/internal/repos"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	// Optional file logging
	var logFile *os.File
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Error(nil, "log.file.open", err, map[string]any{"path": cfg.LogFile})
		} else {
			logFile = f
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.Security(nil, "config.invalid", map[string]any{"key": "LOG_LEVEL", "value": cfg.LogLevel})
	}

	err := run(cfg)
	if err != nil {
		applog.Error(nil, "server.exit", err, nil)
	}
	closeLog(logFile)
	if err != nil {
		os.Exit(1)
	}
}

// closeLog flushes the logger and closes the log file, if any.
func closeLog(f *os.File) {
	_ = applog.Sync()
	if f == nil {
		return
	}
	applog.SetOutput(os.Stdout)
	_ = f.Close()
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

	appCfg := handlers.AppConfig{
		TemplatesDir:    "./web/templates",
		ReloadTemplates: cfg.TemplateReload,
		RateLimit:       60,
		PlaceRateLimit:  20,
	}
	app := handlers.NewApp(appCfg)
	handlers.Register(app, handlers.NewDeps(db, cfg, pub), appCfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		applog.Info(nil, "server.listen", map[string]any{"port": cfg.Port})
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		applog.Info(nil, "server.shutdown", nil)

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(
			app.ShutdownWithContext(sctx),
			shutdownTracing(sctx),
			pub.Close(),
		)
	})
	return g.Wait()
}
