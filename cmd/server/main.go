package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/claritykit/claritykit-backend/internal/api"
	mongodb "github.com/claritykit/claritykit-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/claritykit/claritykit-backend/internal/infrastructure/db/redis"
	"github.com/claritykit/claritykit-backend/internal/infrastructure/mail"
	"github.com/claritykit/claritykit-backend/internal/pkg/config"
	"github.com/claritykit/claritykit-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        ClarityKit Backend API
// @version      1.0
// @description  User authentication and account management service.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Mail dispatcher ---
	var sender mail.Sender
	if cfg.SMTP.Host != "" {
		sender = mail.NewSMTPSender(cfg.SMTP)
	} else {
		log.Warn().Msg("no smtp server configured, emails will be logged only")
		sender = mail.NewLogSender(log)
	}
	dispatcher := mail.NewDispatcher(0, sender, cfg.Auth, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e, err := api.NewRouter(db, rdb, dispatcher, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
