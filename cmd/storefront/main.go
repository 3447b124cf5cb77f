package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"bookmart/internal/bookclient"
	"bookmart/internal/cartclient"
	"bookmart/internal/config"
	"bookmart/internal/server"
	"bookmart/internal/session"
	"bookmart/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	var sessions session.Store
	if cfg.SessionJWTSecret != "" {
		sessions = session.NewJWTStore(cfg.SessionJWTSecret, sessionTTL)
	} else {
		sessions = session.NewRedisStore(redisClient, sessionTTL)
	}

	httpServer, err := server.New(server.Config{
		Books:                     bookclient.NewClient(cfg.BookServiceURL),
		Carts:                     cartclient.NewClient(cfg.CartServiceURL),
		Sessions:                  sessions,
		Redis:                     redisClient,
		VisitRateLimitPerMinute:   cfg.VisitRateLimitPerMinute,
		SessionRateLimitPerMinute: cfg.SessionRateLimitPerMinute,
		CooldownSeconds:           cfg.AddToCartCooldownSeconds,
		VisitTTL:                  time.Duration(cfg.VisitTTLMinutes) * time.Minute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	defer httpServer.Close()

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
