package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tunelar/backend/internal/api"
	"github.com/tunelar/backend/internal/core/service"
	"github.com/tunelar/backend/internal/infrastructure/config"
	mongodb "github.com/tunelar/backend/internal/infrastructure/db/mongo"
	redisdb "github.com/tunelar/backend/internal/infrastructure/db/redis"
	"github.com/tunelar/backend/internal/infrastructure/queue"
	"github.com/tunelar/backend/pkg/logger"
)

// @title        Tunelar Backend API
// @version      1.0
// @description  Authentication and user management API for the Tunelar content-sharing platform.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; config failures go straight to stderr.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
	} else {
		log.Warn().Msg("redis not configured, login throttling disabled")
	}

	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	rootID, err := service.Bootstrap(ctx, userRepo, roleRepo, cfg.AdminPassword, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap seeding failed")
	}

	audit := queue.NewAuditDispatcher(0, mongodb.NewAuditRepository(db), log)
	audit.Start(ctx)

	e := api.NewRouter(db, rdb, cfg, rootID, audit, log)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Info().Err(err).Msg("server stopped")
	}
}
