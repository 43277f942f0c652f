package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/buoywatch/backend/internal/domain"
)

const readingColumns = `id, buoy_id, timestamp, wave_height, wave_period, wave_direction,
	wind_speed, wind_direction, wind_gust, atmospheric_pressure, air_temperature,
	water_temperature, visibility, humidity, dew_point, sea_level_pressure,
	quality_flags, quality_score, is_valid, source, raw_data, created_at, processed_at`

func (r *Repos) InsertReading(ctx context.Context, rd *domain.Reading) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext, `
		INSERT INTO readings (id, buoy_id, timestamp, wave_height, wave_period,
			wave_direction, wind_speed, wind_direction, wind_gust,
			atmospheric_pressure, air_temperature, water_temperature, visibility,
			humidity, dew_point, sea_level_pressure, quality_flags, quality_score,
			is_valid, source, raw_data, processed_at)
		VALUES (:id, :buoy_id, :timestamp, :wave_height, :wave_period,
			:wave_direction, :wind_speed, :wind_direction, :wind_gust,
			:atmospheric_pressure, :air_temperature, :water_temperature, :visibility,
			:humidity, :dew_point, :sea_level_pressure, :quality_flags, :quality_score,
			:is_valid, :source, :raw_data, :processed_at)`, rd)
	return err
}

// LatestReading returns the newest reading for a buoy, nil when the station
// has never reported.
func (r *Repos) LatestReading(ctx context.Context, buoyID string) (*domain.Reading, error) {
	var rd domain.Reading
	err := sqlx.GetContext(ctx, r.ext, &rd, `
		SELECT `+readingColumns+` FROM readings
		WHERE buoy_id = $1
		ORDER BY timestamp DESC
		LIMIT 1`, buoyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

// ReadingsInRange scans a buoy's readings over [from, to], newest first.
// validOnly filters out samples that failed validation.
func (r *Repos) ReadingsInRange(ctx context.Context, buoyID string, from, to time.Time, validOnly bool, limit int) ([]domain.Reading, error) {
	q := `SELECT ` + readingColumns + ` FROM readings
		WHERE buoy_id = $1 AND timestamp >= $2 AND timestamp <= $3`
	if validOnly {
		q += ` AND is_valid`
	}
	q += ` ORDER BY timestamp DESC`
	args := []any{buoyID, from, to}
	if limit > 0 {
		q += ` LIMIT $4`
		args = append(args, limit)
	}

	var out []domain.Reading
	err := sqlx.SelectContext(ctx, r.ext, &out, q, args...)
	return out, err
}

// ReadingsSince returns all readings across stations newer than the cutoff,
// used by the archive job.
func (r *Repos) ReadingsSince(ctx context.Context, cutoff time.Time) ([]domain.Reading, error) {
	var out []domain.Reading
	err := sqlx.SelectContext(ctx, r.ext, &out, `
		SELECT `+readingColumns+` FROM readings
		WHERE created_at >= $1
		ORDER BY buoy_id, timestamp`, cutoff)
	return out, err
}

func (r *Repos) MarkReadingProcessed(ctx context.Context, id string, at time.Time) error {
	_, err := r.ext.ExecContext(ctx,
		`UPDATE readings SET processed_at = $2 WHERE id = $1`, id, at)
	return err
}
