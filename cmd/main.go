package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "github.com/fedutinova/mediastore/internal/config"
	"github.com/fedutinova/mediastore/internal/redis"
	"github.com/fedutinova/mediastore/internal/server"
	"github.com/fedutinova/mediastore/internal/storage"
	httpapi "github.com/fedutinova/mediastore/internal/transport/http"
	"github.com/fedutinova/mediastore/internal/upload"
)

func main() {
	cfg := appconfig.Load()
	if err := appconfig.Validate(cfg); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	slog.Info("starting mediastore", "addr", cfg.HTTPAddr, "backend", storage.SelectBackend(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize storage", "err", err)
		os.Exit(1)
	}
	slog.Info("storage initialized", "type", storage.GetStorageType(cfg))

	handlers := &httpapi.Handlers{
		Uploads: upload.NewService(store),
		Config:  cfg,
	}

	if cfg.RedisURL != "" {
		redisService, err := redis.New(cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer redisService.Close()
		handlers.Index = redisService
	} else {
		slog.Warn("REDIS_URL not set, upload ownership is not tracked")
	}

	r := server.NewRouter(handlers)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	slog.Info("shutting down")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
	cancel()
}
