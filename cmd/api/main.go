package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/cache"
	"github.com/buoywatch/backend/internal/cloud"
	"github.com/buoywatch/backend/internal/config"
	"github.com/buoywatch/backend/internal/database"
	"github.com/buoywatch/backend/internal/httpapi"
	"github.com/buoywatch/backend/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	zerolog.SetGlobalLevel(cfg.ZerologLevel())

	log.Info().Str("environment", cfg.Environment).Msg("starting BuoyWatch API")

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	cacheClient, err := cache.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("cache client init failed")
	}

	var snsClient *cloud.SNSClient
	if cfg.UseCloudServices && cfg.SNSTopicArn != "" {
		snsClient, err = cloud.NewSNSClient(context.Background(), cfg.AWSRegion, cfg.SNSTopicArn)
		if err != nil {
			log.Fatal().Err(err).Msg("sns client init failed")
		}
	}

	svcs := service.New(db, cfg, cacheClient, snsClient, nil)

	// Startup sequence: each step is load-bearing, so any failure is fatal.
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.CreateTables(startupCtx, db); err != nil {
		log.Fatal().Err(err).Msg("startup failed: create tables")
	}
	if err := cacheClient.Ping(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("startup failed: redis unreachable")
	}
	log.Info().Msg("redis connection established")
	log.Info().Msg("metrics collection initialized")

	app := fiber.New(fiber.Config{
		AppName:               "BuoyWatch API",
		DisableStartupMessage: !cfg.Debug,
	})

	app.Use(httpapi.HostAllowlist(cfg.AllowedHosts))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE",
		AllowCredentials: true,
	}))

	server := httpapi.NewServer(cfg, svcs, cacheClient, db)
	server.Register(app)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info().Msg("shutting down API")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("addr", cfg.APIAddr).Msg("api listening")
	if err := app.Listen(cfg.APIAddr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}

	if err := cacheClient.Close(); err != nil {
		log.Error().Err(err).Msg("cache close error")
	}
	log.Info().Msg("cleanup completed")
}
