package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/cache"
	"github.com/buoywatch/backend/internal/cloud"
	"github.com/buoywatch/backend/internal/config"
	"github.com/buoywatch/backend/internal/database"
	"github.com/buoywatch/backend/internal/domain"
	"github.com/buoywatch/backend/internal/repository"
)

// ReadingService runs the ingest pipeline: parse telemetry, persist the
// sample, advance the station's last-seen marker, evaluate thresholds and
// raise alerts.
type ReadingService struct {
	repos *repository.Repos
	cfg   *config.Config
	cache *cache.Client
	sns   *cloud.SNSClient
}

// telemetryEnvelope is the wire shape published on the MQTT readings topic.
// Observations carry NOAA realtime2 column abbreviations. Station metadata
// is optional; when present the station record is registered or refreshed
// before the sample is stored.
type telemetryEnvelope struct {
	StationID    string         `json:"station_id"`
	Timestamp    time.Time      `json:"timestamp"`
	Station      map[string]any `json:"station,omitempty"`
	Observations map[string]any `json:"observations"`
}

// FromMQTT ingests one telemetry message.
func (s *ReadingService) FromMQTT(ctx context.Context, topic string, payload []byte) error {
	var env telemetryEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("decode telemetry: %w", err)
	}
	if env.StationID == "" {
		return fmt.Errorf("telemetry on %s missing station_id", topic)
	}
	if env.Timestamp.IsZero() {
		return fmt.Errorf("telemetry for %s missing timestamp", env.StationID)
	}

	if env.Station != nil {
		b := domain.BuoyFromNOAAMetadata(env.StationID, env.Station)
		if err := s.repos.UpsertBuoy(ctx, b); err != nil {
			return fmt.Errorf("register station %s: %w", env.StationID, err)
		}
	}

	reading := domain.ReadingFromNOAAData(env.StationID, env.Timestamp.UTC(), env.Observations)
	return s.Ingest(ctx, reading)
}

// Ingest persists a reading and runs the downstream effects. The database
// writes (reading, buoy marker, alerts, processed stamp) commit or roll back
// as one transaction; notification and cache refresh happen after commit and
// are best effort.
func (s *ReadingService) Ingest(ctx context.Context, reading *domain.Reading) error {
	var alerts []domain.Alert

	err := database.WithinTx(ctx, s.repos.DB(), func(tx *sqlx.Tx) error {
		repos := s.repos.WithTx(tx)

		if err := repos.InsertReading(ctx, reading); err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
		if err := repos.TouchLastReading(ctx, reading.BuoyID, reading.Timestamp); err != nil {
			return fmt.Errorf("touch buoy %s: %w", reading.BuoyID, err)
		}

		alerts = s.evaluate(reading)
		for i := range alerts {
			if err := repos.InsertAlert(ctx, &alerts[i]); err != nil {
				return fmt.Errorf("insert alert: %w", err)
			}
		}

		now := time.Now().UTC()
		if err := repos.MarkReadingProcessed(ctx, reading.ID.String(), now); err != nil {
			return fmt.Errorf("mark reading processed: %w", err)
		}
		reading.ProcessedAt = &now
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, alerts)

	if s.cache != nil {
		if err := s.cache.SetLatestReading(ctx, reading); err != nil {
			log.Warn().Err(err).Str("buoy_id", reading.BuoyID).Msg("latest-reading cache refresh failed")
		}
	}

	log.Info().
		Str("buoy_id", reading.BuoyID).
		Time("timestamp", reading.Timestamp).
		Int("alerts", len(alerts)).
		Msg("reading ingested")
	return nil
}

// evaluate maps triggered condition tags onto alert records. Severity bands:
// EXTREME_* conditions are CRITICAL, HIGH_* are HIGH, LOW_PRESSURE is MEDIUM.
func (s *ReadingService) evaluate(reading *domain.Reading) []domain.Alert {
	var alerts []domain.Alert
	for _, condition := range reading.CheckAlertConditions() {
		var a *domain.Alert
		switch condition {
		case domain.ConditionHighWaves:
			a = domain.NewAlertFromReading(reading, domain.AlertHighWaves, domain.SeverityHigh,
				s.cfg.HighWaveThreshold, *reading.WaveHeight, "m")
		case domain.ConditionExtremeWaves:
			a = domain.NewAlertFromReading(reading, domain.AlertExtremeWaves, domain.SeverityCritical,
				s.cfg.ExtremeWaveThreshold, *reading.WaveHeight, "m")
		case domain.ConditionHighWind:
			a = domain.NewAlertFromReading(reading, domain.AlertHighWind, domain.SeverityHigh,
				s.cfg.HighWindThreshold, *reading.WindSpeed, "m/s")
		case domain.ConditionExtremeWind:
			a = domain.NewAlertFromReading(reading, domain.AlertExtremeWind, domain.SeverityCritical,
				s.cfg.ExtremeWindThreshold, *reading.WindSpeed, "m/s")
		case domain.ConditionLowPressure:
			a = domain.NewAlertFromReading(reading, domain.AlertLowPressure, domain.SeverityMedium,
				s.cfg.LowPressureThreshold, *reading.AtmosphericPressure, "mb")
		default:
			continue
		}
		alerts = append(alerts, *a)
	}
	return alerts
}

// notify publishes the raised alerts: one SNS message for a single alert, a
// batched message when a reading trips several thresholds at once.
func (s *ReadingService) notify(ctx context.Context, alerts []domain.Alert) {
	if s.sns == nil || len(alerts) == 0 {
		return
	}

	var err error
	if len(alerts) == 1 {
		err = s.sns.PublishAlert(ctx, &alerts[0])
	} else {
		err = s.sns.PublishBatch(ctx, alerts)
	}
	if err != nil {
		log.Error().Err(err).Int("alerts", len(alerts)).Msg("alert notification failed")
		return
	}

	for i := range alerts {
		if err := s.repos.MarkAlertNotified(ctx, alerts[i].ID.String(), "sns"); err != nil {
			log.Error().Err(err).Str("alert_id", alerts[i].ID.String()).Msg("failed to record notification")
		}
	}
}

// Latest serves the newest reading for a station, preferring the cache.
func (s *ReadingService) Latest(ctx context.Context, buoyID string) (*domain.Reading, error) {
	if s.cache != nil {
		if rd, err := s.cache.GetLatestReading(ctx, buoyID); err == nil {
			return rd, nil
		}
	}

	rd, err := s.repos.LatestReading(ctx, buoyID)
	if err != nil {
		return nil, err
	}
	if rd != nil && s.cache != nil {
		if err := s.cache.SetLatestReading(ctx, rd); err != nil {
			log.Warn().Err(err).Str("buoy_id", buoyID).Msg("latest-reading cache fill failed")
		}
	}
	return rd, nil
}
