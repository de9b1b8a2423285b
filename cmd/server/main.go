package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"stock-advisor-go/internal/config"
	"stock-advisor-go/internal/database"
	"stock-advisor-go/internal/handlers"
	"stock-advisor-go/internal/logger"
	"stock-advisor-go/internal/push"
	"stock-advisor-go/internal/service"
	"stock-advisor-go/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Connect to the database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Optional Redis stats cache
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal("Invalid redis URL", zap.Error(err))
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		log.Info("Redis stats cache enabled")
	}

	// Services
	users := service.NewUserService(db, log)
	trades := service.NewTradeService(db)
	statsTTL := time.Duration(cfg.Redis.StatsTTLSecs) * time.Second
	stats := service.NewStatsService(db, rdb, statsTTL, log)
	sender := push.NewClient(&cfg.Push, log)

	// Live feed hub
	hub := ws.NewHub(log)
	go hub.Run()

	// Nightly sweep downgrading expired subscriptions back to FREE.
	sweeper := cron.New()
	_, err = sweeper.AddFunc(cfg.Notifier.ExpirySweepCron, func() {
		count, err := users.DowngradeExpired(time.Now())
		if err != nil {
			log.Error("Expiry sweep failed", zap.Error(err))
			return
		}
		log.Info("Expiry sweep finished", zap.Int("downgraded", count))
	})
	if err != nil {
		log.Fatal("Invalid expiry sweep schedule", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	router := handlers.NewRouter(&cfg, hub,
		handlers.NewAuthHandler(users, &cfg, log),
		handlers.NewTradeHandler(trades, users, hub, log),
		handlers.NewUserHandler(users, log),
		handlers.NewStatsHandler(stats, log),
		handlers.NewNotifyHandler(sender, log))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Starting API server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("API server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
