package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/cache"
	"github.com/buoywatch/backend/internal/cloud"
	"github.com/buoywatch/backend/internal/repository"
)

// MaintenanceService holds the scheduled housekeeping jobs run by the
// ingestor's cron: alert expiry, raw-data archival and retention, station
// status refresh.
type MaintenanceService struct {
	repos         *repository.Repos
	alerts        *AlertService
	cache         *cache.Client
	s3            *cloud.S3Client
	retentionDays int
}

// ExpireAlerts is the hourly sweep.
func (s *MaintenanceService) ExpireAlerts(ctx context.Context) {
	if _, err := s.alerts.ExpireSweep(ctx); err != nil {
		log.Error().Err(err).Msg("alert expiry sweep failed")
	}
}

// ArchiveReadings uploads yesterday's raw readings to S3 as one JSON batch.
// No-op when cloud services are disabled.
func (s *MaintenanceService) ArchiveReadings(ctx context.Context) {
	if s.s3 == nil {
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -1)
	readings, err := s.repos.ReadingsSince(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("archive: failed to load readings")
		return
	}
	if len(readings) == 0 {
		return
	}

	payload, err := json.Marshal(readings)
	if err != nil {
		log.Error().Err(err).Msg("archive: failed to encode readings")
		return
	}

	key := cloud.ArchiveKey(cutoff)
	if err := s.s3.UploadArchive(ctx, key, payload); err != nil {
		log.Error().Err(err).Str("key", key).Msg("archive upload failed")
		return
	}
	log.Info().Str("key", key).Int("readings", len(readings)).Msg("raw readings archived")
}

// PruneArchives deletes raw-reading archives older than the retention
// window. Keys that don't parse as archive keys are left alone.
func (s *MaintenanceService) PruneArchives(ctx context.Context) {
	if s.s3 == nil || s.retentionDays <= 0 {
		return
	}

	keys, err := s.s3.ListArchives(ctx, "raw/")
	if err != nil {
		log.Error().Err(err).Msg("retention: failed to list archives")
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	removed := 0
	for _, key := range keys {
		day, ok := cloud.ArchiveKeyDate(key)
		if !ok || !day.Before(cutoff) {
			continue
		}
		if err := s.s3.Delete(ctx, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("retention: delete failed")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Int("retention_days", s.retentionDays).Msg("old archives pruned")
	}
}

// RefreshBuoyStatus flags stations that have gone silent so the dashboard
// can grey them out. Cached metadata for a flipped station is dropped so the
// next read sees the new status.
func (s *MaintenanceService) RefreshBuoyStatus(ctx context.Context) {
	buoys, err := s.repos.ListBuoys(ctx, false)
	if err != nil {
		log.Error().Err(err).Msg("status refresh: failed to list buoys")
		return
	}

	for i := range buoys {
		b := &buoys[i]
		reporting := b.IsReporting()

		var newStatus string
		switch {
		case b.Status == "active" && !reporting && b.LastReadingAt != nil:
			newStatus = "silent"
		case b.Status == "silent" && reporting:
			newStatus = "active"
		default:
			continue
		}

		if err := s.repos.SetBuoyStatus(ctx, b.ID, newStatus, b.IsActive); err != nil {
			log.Error().Err(err).Str("buoy_id", b.ID).Msg("status refresh failed")
			continue
		}
		if s.cache != nil {
			if err := s.cache.InvalidateBuoy(ctx, b.ID); err != nil {
				log.Warn().Err(err).Str("buoy_id", b.ID).Msg("cache invalidation failed")
			}
		}
	}
}
