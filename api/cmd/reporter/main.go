package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"problem-reporter/api/internal/app"
	"problem-reporter/api/internal/config"
	"problem-reporter/api/internal/handle"
	"problem-reporter/api/internal/httpserver"
	"problem-reporter/api/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	p, err := app.NewPipeline(cfg, logger)
	if err != nil {
		logger.Fatal("pipeline", zap.Error(err))
	}

	h := handle.New(p, handle.Options{MaxUploadBytes: cfg.MaxUploadBytes}, logger)
	mux := http.NewServeMux()
	h.Register(mux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := httpserver.Run(ctx, ":"+cfg.Port, mux, logger); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
}
