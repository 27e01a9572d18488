package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"doorbell/config"
	"doorbell/internal/api"
	"doorbell/internal/lib/logger"
	"doorbell/internal/lib/sl"
	"doorbell/internal/store"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("path", configPath), sl.Err(err))
		os.Exit(1)
	}

	log := logger.Setup(cfg.Env).With(slog.String("component", "doorbell-web"))
	log.Info("configuration loaded", slog.String("path", configPath), slog.String("env", cfg.Env))

	if cfg.Env == logger.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	videos := store.NewDirStore(cfg.Paths.VideoDir, log)
	router := api.NewRouter(&cfg.Server, videos)
	server := &http.Server{
		Addr:    cfg.ServerAddress(),
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", slog.String("addr", server.Addr), slog.String("video_dir", cfg.Paths.VideoDir))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server ListenAndServe", sl.Err(err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Info("shutdown signal received, stopping server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server Shutdown", sl.Err(err))
		os.Exit(1)
	}

	log.Info("server gracefully stopped")
}
