package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/cache"
	"github.com/buoywatch/backend/internal/cloud"
	"github.com/buoywatch/backend/internal/config"
	"github.com/buoywatch/backend/internal/database"
	"github.com/buoywatch/backend/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	zerolog.SetGlobalLevel(cfg.ZerologLevel())

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	ctx := context.Background()

	if err := database.CreateTables(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("create tables failed")
	}

	cacheClient, err := cache.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("cache client init failed")
	}
	defer cacheClient.Close()

	var snsClient *cloud.SNSClient
	var s3Client *cloud.S3Client
	if cfg.UseCloudServices {
		if cfg.SNSTopicArn != "" {
			snsClient, err = cloud.NewSNSClient(ctx, cfg.AWSRegion, cfg.SNSTopicArn)
			if err != nil {
				log.Fatal().Err(err).Msg("sns client init failed")
			}
		}
		s3Client, err = cloud.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("s3 client init failed")
		}
	}

	svcs := service.New(db, cfg, cacheClient, snsClient, s3Client)

	opts := mqtt.NewClientOptions().AddBroker(cfg.MQTTBroker)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		if err := svcs.Readings.FromMQTT(ctx, msg.Topic(), msg.Payload()); err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("ingest failed")
		}
	}

	if token := client.Subscribe(cfg.MQTTTopic, 0, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() { svcs.Maintenance.ExpireAlerts(ctx) }); err != nil {
		log.Fatal().Err(err).Msg("schedule expiry sweep")
	}
	if _, err := scheduler.AddFunc("15 0 * * *", func() { svcs.Maintenance.ArchiveReadings(ctx) }); err != nil {
		log.Fatal().Err(err).Msg("schedule archive job")
	}
	if _, err := scheduler.AddFunc("45 1 * * *", func() { svcs.Maintenance.PruneArchives(ctx) }); err != nil {
		log.Fatal().Err(err).Msg("schedule retention sweep")
	}
	if _, err := scheduler.AddFunc("*/30 * * * *", func() { svcs.Maintenance.RefreshBuoyStatus(ctx) }); err != nil {
		log.Fatal().Err(err).Msg("schedule status refresh")
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Info().Str("broker", cfg.MQTTBroker).Str("topic", cfg.MQTTTopic).Msg("ingestor running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("ingestor stopped")
}
