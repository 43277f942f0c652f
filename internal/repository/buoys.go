package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/buoywatch/backend/internal/domain"
)

const buoyColumns = `id, name, description, latitude, longitude, water_depth_meters,
	is_active, status, station_type, sensor_types, data_quality_score,
	last_maintenance, first_reading_at, last_reading_at, owner_organization,
	created_at, updated_at`

func (r *Repos) ListBuoys(ctx context.Context, activeOnly bool) ([]domain.Buoy, error) {
	q := `SELECT ` + buoyColumns + ` FROM buoys`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY id`

	var out []domain.Buoy
	err := sqlx.SelectContext(ctx, r.ext, &out, q)
	return out, err
}

func (r *Repos) GetBuoy(ctx context.Context, id string) (*domain.Buoy, error) {
	var b domain.Buoy
	err := sqlx.GetContext(ctx, r.ext, &b, `SELECT `+buoyColumns+` FROM buoys WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repos) UpsertBuoy(ctx context.Context, b *domain.Buoy) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext, `
		INSERT INTO buoys (id, name, description, latitude, longitude, water_depth_meters,
			is_active, status, station_type, sensor_types, data_quality_score,
			last_maintenance, first_reading_at, last_reading_at, owner_organization)
		VALUES (:id, :name, :description, :latitude, :longitude, :water_depth_meters,
			:is_active, :status, :station_type, :sensor_types, :data_quality_score,
			:last_maintenance, :first_reading_at, :last_reading_at, :owner_organization)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			water_depth_meters = EXCLUDED.water_depth_meters,
			is_active = EXCLUDED.is_active,
			status = EXCLUDED.status,
			station_type = EXCLUDED.station_type,
			sensor_types = EXCLUDED.sensor_types,
			updated_at = now()`, b)
	return err
}

// TouchLastReading advances a buoy's last-seen timestamp and seeds the
// first-seen timestamp only when it is still unset.
func (r *Repos) TouchLastReading(ctx context.Context, buoyID string, ts time.Time) error {
	_, err := r.ext.ExecContext(ctx, `
		UPDATE buoys
		SET last_reading_at = $2,
			first_reading_at = COALESCE(first_reading_at, $2),
			updated_at = now()
		WHERE id = $1`, buoyID, ts)
	return err
}

// NearestBuoys returns active buoys ordered by Haversine distance to the
// given point. The distance math lives in the domain; ordering is done here
// because the candidate set (all active stations) is small.
func (r *Repos) NearestBuoys(ctx context.Context, lat, lon float64, limit int) ([]domain.Buoy, error) {
	buoys, err := r.ListBuoys(ctx, true)
	if err != nil {
		return nil, err
	}
	sort.Slice(buoys, func(i, j int) bool {
		return buoys[i].DistanceTo(lat, lon) < buoys[j].DistanceTo(lat, lon)
	})
	if limit > 0 && len(buoys) > limit {
		buoys = buoys[:limit]
	}
	return buoys, nil
}

func (r *Repos) SetBuoyStatus(ctx context.Context, id, status string, active bool) error {
	_, err := r.ext.ExecContext(ctx, `
		UPDATE buoys SET status = $2, is_active = $3, updated_at = now() WHERE id = $1`,
		id, status, active)
	return err
}
