package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"matifood/internal/catalog"
	"matifood/internal/config"
	"matifood/internal/http/handlers"
	applog "matifood/internal/log"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the website and API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := applog.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		if logger, err = applog.New(cfg.LogLevel, ""); err != nil {
			return err
		}
	}
	defer func() { _ = logger.Sync() }()
	restore := applog.SetLogger(logger)
	defer restore()
	applog.SetPIIKey(cfg.PIIKey)
	if cfg.PIIKey == "" {
		logger.Warn("config.pii_key.missing", zap.String("effect", "email fingerprints are unkeyed"))
	}

	cat, err := catalog.Default()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := handlers.NewDeps(ctx, cfg, cat, logger)
	defer func() { _ = deps.Close() }()
	app := handlers.NewApp(deps)

	log.Printf("[static] /static -> %s", cfg.StaticDir)
	errc := make(chan error, 1)
	go func() { errc <- app.Listen(":" + cfg.Port) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("server.shutdown")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
