package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS buoys (
		id VARCHAR(10) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		water_depth_meters DOUBLE PRECISION,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		status VARCHAR(50) NOT NULL DEFAULT 'active',
		station_type VARCHAR(50),
		sensor_types JSONB,
		data_quality_score DOUBLE PRECISION DEFAULT 1.0,
		last_maintenance TIMESTAMPTZ,
		first_reading_at TIMESTAMPTZ,
		last_reading_at TIMESTAMPTZ,
		owner_organization VARCHAR(255) DEFAULT 'NOAA',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_buoy_location ON buoys (latitude, longitude)`,
	`CREATE INDEX IF NOT EXISTS idx_buoy_active_status ON buoys (is_active, status)`,
	`CREATE INDEX IF NOT EXISTS idx_buoy_last_reading ON buoys (last_reading_at)`,

	`CREATE TABLE IF NOT EXISTS readings (
		id UUID PRIMARY KEY,
		buoy_id VARCHAR(10) NOT NULL REFERENCES buoys(id) ON DELETE CASCADE,
		timestamp TIMESTAMPTZ NOT NULL,
		wave_height DOUBLE PRECISION,
		wave_period DOUBLE PRECISION,
		wave_direction DOUBLE PRECISION,
		wind_speed DOUBLE PRECISION,
		wind_direction DOUBLE PRECISION,
		wind_gust DOUBLE PRECISION,
		atmospheric_pressure DOUBLE PRECISION,
		air_temperature DOUBLE PRECISION,
		water_temperature DOUBLE PRECISION,
		visibility DOUBLE PRECISION,
		humidity DOUBLE PRECISION,
		dew_point DOUBLE PRECISION,
		sea_level_pressure DOUBLE PRECISION,
		quality_flags JSONB,
		quality_score DOUBLE PRECISION DEFAULT 1.0,
		is_valid BOOLEAN NOT NULL DEFAULT TRUE,
		source VARCHAR(50) DEFAULT 'NOAA_REALTIME',
		raw_data JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		processed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reading_buoy_timestamp ON readings (buoy_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_reading_timestamp ON readings (timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_reading_buoy_valid_time ON readings (buoy_id, is_valid, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_reading_wave_height ON readings (wave_height)`,
	`CREATE INDEX IF NOT EXISTS idx_reading_wind_speed ON readings (wind_speed)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id UUID PRIMARY KEY,
		buoy_id VARCHAR(10) NOT NULL REFERENCES buoys(id) ON DELETE CASCADE,
		alert_type VARCHAR(50) NOT NULL,
		severity VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		threshold_value DOUBLE PRECISION,
		measured_value DOUBLE PRECISION,
		measurement_unit VARCHAR(20),
		detected_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ,
		acknowledged_at TIMESTAMPTZ,
		resolved_at TIMESTAMPTZ,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		impact_radius_km DOUBLE PRECISION,
		acknowledged_by VARCHAR(255),
		notes TEXT,
		notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
		notification_channels VARCHAR(255),
		trigger_reading_id UUID REFERENCES readings(id) ON DELETE SET NULL,
		context_data TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_buoy_status ON alerts (buoy_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_type_severity ON alerts (alert_type, severity)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_active ON alerts (status, detected_at)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_severity_time ON alerts (severity, detected_at)`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		username VARCHAR(50) UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(100),
		last_name VARCHAR(100),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		default_latitude DOUBLE PRECISION,
		default_longitude DOUBLE PRECISION,
		location_name VARCHAR(255),
		alert_preferences JSONB,
		favorite_buoys JSONB,
		saved_locations JSONB,
		dashboard_config JSONB,
		last_login_at TIMESTAMPTZ,
		login_count INTEGER NOT NULL DEFAULT 0,
		phone_number VARCHAR(20),
		timezone VARCHAR(50) NOT NULL DEFAULT 'UTC',
		verification_token VARCHAR(255),
		verification_sent_at TIMESTAMPTZ,
		reset_token VARCHAR(255),
		reset_token_expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_active ON users (is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_user_location ON users (default_latitude, default_longitude)`,
	`CREATE INDEX IF NOT EXISTS idx_user_verified ON users (is_verified)`,
}

// CreateTables applies the full schema. Used during startup; any failure is
// propagated so the caller can refuse to serve.
func CreateTables(ctx context.Context, db *sqlx.DB) error {
	log.Info().Msg("creating database tables")
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Error().Err(err).Msg("failed to create database tables")
			return err
		}
	}
	log.Info().Msg("database tables created")
	return nil
}

// DropTables removes everything, for tests and local resets.
func DropTables(ctx context.Context, db *sqlx.DB) error {
	log.Warn().Msg("dropping all database tables")
	for _, table := range []string{"alerts", "readings", "buoys", "users"} {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table+` CASCADE`); err != nil {
			log.Error().Err(err).Str("table", table).Msg("failed to drop table")
			return err
		}
	}
	log.Info().Msg("database tables dropped")
	return nil
}
