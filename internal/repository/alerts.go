package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/buoywatch/backend/internal/domain"
)

const alertColumns = `id, buoy_id, alert_type, severity, status, title, description,
	threshold_value, measured_value, measurement_unit, detected_at, expires_at,
	acknowledged_at, resolved_at, latitude, longitude, impact_radius_km,
	acknowledged_by, notes, notification_sent, notification_channels,
	trigger_reading_id, context_data, created_at, updated_at`

func (r *Repos) InsertAlert(ctx context.Context, a *domain.Alert) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext, `
		INSERT INTO alerts (id, buoy_id, alert_type, severity, status, title,
			description, threshold_value, measured_value, measurement_unit,
			detected_at, expires_at, latitude, longitude, impact_radius_km,
			notification_sent, notification_channels, trigger_reading_id, context_data)
		VALUES (:id, :buoy_id, :alert_type, :severity, :status, :title,
			:description, :threshold_value, :measured_value, :measurement_unit,
			:detected_at, :expires_at, :latitude, :longitude, :impact_radius_km,
			:notification_sent, :notification_channels, :trigger_reading_id, :context_data)`, a)
	return err
}

func (r *Repos) GetAlert(ctx context.Context, id string) (*domain.Alert, error) {
	var a domain.Alert
	err := sqlx.GetContext(ctx, r.ext, &a, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ActiveAlerts lists open alerts, optionally scoped to one buoy, newest
// detection first.
func (r *Repos) ActiveAlerts(ctx context.Context, buoyID string) ([]domain.Alert, error) {
	q := `SELECT ` + alertColumns + ` FROM alerts WHERE status = $1`
	args := []any{domain.StatusActive}
	if buoyID != "" {
		q += ` AND buoy_id = $2`
		args = append(args, buoyID)
	}
	q += ` ORDER BY detected_at DESC`

	var out []domain.Alert
	err := sqlx.SelectContext(ctx, r.ext, &out, q, args...)
	return out, err
}

// UpdateAlertStatus persists a lifecycle change made on the domain object.
func (r *Repos) UpdateAlertStatus(ctx context.Context, a *domain.Alert) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext, `
		UPDATE alerts SET
			status = :status,
			acknowledged_at = :acknowledged_at,
			acknowledged_by = :acknowledged_by,
			resolved_at = :resolved_at,
			notes = :notes,
			updated_at = now()
		WHERE id = :id`, a)
	return err
}

func (r *Repos) MarkAlertNotified(ctx context.Context, id string, channels string) error {
	_, err := r.ext.ExecContext(ctx, `
		UPDATE alerts SET notification_sent = TRUE, notification_channels = $2,
			updated_at = now()
		WHERE id = $1`, id, channels)
	return err
}

// ExpireAlerts resolves every ACTIVE alert whose expiry has passed and
// returns how many were swept.
func (r *Repos) ExpireAlerts(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.ext.ExecContext(ctx, `
		UPDATE alerts SET status = $1, resolved_at = $2, updated_at = now()
		WHERE status = $3 AND expires_at IS NOT NULL AND expires_at < $2`,
		domain.StatusResolved, now, domain.StatusActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
