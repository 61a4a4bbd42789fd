// Command server runs the LiveTracker HTTP API.
//
// @title                       LiveTracker API
// @version                     1.0
// @description                 Emergency reporting and live victim/responder location tracking.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rapidaid/livetracker/internal/api"
	"github.com/rapidaid/livetracker/internal/api/handler"
	"github.com/rapidaid/livetracker/internal/core/service"
	"github.com/rapidaid/livetracker/internal/infrastructure/db/mongo"
	redisinfra "github.com/rapidaid/livetracker/internal/infrastructure/db/redis"
	"github.com/rapidaid/livetracker/internal/infrastructure/idgen"
	"github.com/rapidaid/livetracker/internal/infrastructure/queue"
	"github.com/rapidaid/livetracker/internal/pkg/config"
	"github.com/rapidaid/livetracker/pkg/logger"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "livetracker-api",
	})
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "livetracker",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo unavailable")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis unavailable")
	}
	defer rdb.Close()

	ids, err := idgen.NewSonyflake(cfg.NodeID)
	if err != nil {
		log.Fatal().Err(err).Msg("id generator")
	}

	emergencies := mongo.NewEmergencyRepository(db)
	cache := redisinfra.NewLocationCache(rdb, 0)

	authService := service.NewAuthService(mongo.NewUserRepository(db), cfg.JWTSecret, tokenTTL)
	emergencyService := service.NewEmergencyService(emergencies, cache, ids, logger.Component("emergency"))
	locationService := service.NewLocationService(
		emergencies,
		cache,
		mongo.NewLocationHistoryRepository(db),
		redisinfra.NewDedupChecker(rdb),
		logger.Component("location"),
	)

	dispatcher := queue.NewDispatcher(cfg.DispatchWorkers, locationService, logger.Component("dispatcher"))
	dispatcher.Start(context.WithoutCancel(ctx))

	readiness := handler.NewReadinessHandler(map[string]handler.Check{
		"mongodb": handler.MongoCheck(mongoClient),
		"redis":   handler.RedisCheck(rdb),
	})

	e := api.NewRouter(api.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		Auth:        authService,
		Emergencies: emergencyService,
		Dispatcher:  dispatcher,
		Readiness:   readiness,
		Log:         logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	dispatcher.Close()
}
