package service

import (
	"github.com/jmoiron/sqlx"

	"github.com/buoywatch/backend/internal/cache"
	"github.com/buoywatch/backend/internal/cloud"
	"github.com/buoywatch/backend/internal/config"
	"github.com/buoywatch/backend/internal/repository"
)

// Services wires repositories, cache and cloud clients into the
// application services. The SNS and S3 clients are nil when cloud services
// are disabled; callers treat them as optional.
type Services struct {
	Repos       *repository.Repos
	Readings    *ReadingService
	Alerts      *AlertService
	Maintenance *MaintenanceService
}

func New(db *sqlx.DB, cfg *config.Config, cacheClient *cache.Client, sns *cloud.SNSClient, s3 *cloud.S3Client) *Services {
	repos := repository.New(db)
	alerts := &AlertService{repos: repos}
	return &Services{
		Repos: repos,
		Readings: &ReadingService{
			repos: repos,
			cfg:   cfg,
			cache: cacheClient,
			sns:   sns,
		},
		Alerts: alerts,
		Maintenance: &MaintenanceService{
			repos:         repos,
			alerts:        alerts,
			cache:         cacheClient,
			s3:            s3,
			retentionDays: cfg.ArchiveRetentionDays,
		},
	}
}
