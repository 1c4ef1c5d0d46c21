package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sgpa-scan/api/internal/app"
	"sgpa-scan/api/internal/config"
	"sgpa-scan/api/internal/handle"
	"sgpa-scan/api/internal/httpserver"
	"sgpa-scan/api/internal/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("bad config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, closeCache, err := app.NewPipeline(ctx, cfg, log)
	if err != nil {
		log.Fatal("pipeline init failed", "error", err)
	}
	defer closeCache()

	mux := http.NewServeMux()
	handle.New(pipeline, log, cfg.ExtractTimeout).Register(mux)

	srv := httpserver.New(":"+cfg.Port, mux)
	if err := httpserver.Serve(ctx, srv, log); err != nil {
		log.Error("http server stopped", "error", err)
	}
}
