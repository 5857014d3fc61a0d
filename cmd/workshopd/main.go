package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"workshop-backend/config"
	"workshop-backend/internal/api"
	"workshop-backend/internal/cache"
	"workshop-backend/internal/db"
	"workshop-backend/internal/notify"
	"workshop-backend/internal/store"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	log.Infof("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Info("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	queryCache := cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval)

	var sender notify.Sender = notify.Noop{}
	if cfg.Notify.Enabled {
		sender = notify.NewWebhookSender(cfg.Notify.WebhookURL,
			time.Duration(cfg.Notify.TimeoutSeconds)*time.Second)
	}
	workerPool := notify.NewWorkerPool(cfg.Notify.WorkerPoolSize, sender)
	workerPool.Start(ctx)

	router := api.NewRouter(cfg, appStore, queryCache, workerPool)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Info("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server Shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
