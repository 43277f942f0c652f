package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/buoywatch/backend/internal/domain"
)

const userColumns = `id, email, username, password_hash, first_name, last_name,
	is_active, is_verified, is_admin, default_latitude, default_longitude,
	location_name, alert_preferences, favorite_buoys, saved_locations,
	dashboard_config, last_login_at, login_count, phone_number, timezone,
	verification_token, verification_sent_at, reset_token, reset_token_expires_at,
	created_at, updated_at`

func (r *Repos) InsertUser(ctx context.Context, u *domain.User) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext, `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name,
			is_active, is_verified, is_admin, default_latitude, default_longitude,
			location_name, alert_preferences, favorite_buoys, saved_locations,
			dashboard_config, phone_number, timezone)
		VALUES (:id, :email, :username, :password_hash, :first_name, :last_name,
			:is_active, :is_verified, :is_admin, :default_latitude, :default_longitude,
			:location_name, :alert_preferences, :favorite_buoys, :saved_locations,
			:dashboard_config, :phone_number, :timezone)`, u)
	return err
}

func (r *Repos) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.ext, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail looks up an account by its lower-cased address.
func (r *Repos) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.ext, &u,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserPreferences persists the preference overlay, favorites and
// location fields after domain-side mutation.
func (r *Repos) UpdateUserPreferences(ctx context.Context, u *domain.User) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext, `
		UPDATE users SET
			alert_preferences = :alert_preferences,
			favorite_buoys = :favorite_buoys,
			saved_locations = :saved_locations,
			dashboard_config = :dashboard_config,
			default_latitude = :default_latitude,
			default_longitude = :default_longitude,
			location_name = :location_name,
			updated_at = now()
		WHERE id = :id`, u)
	return err
}

// AlertRecipients returns users eligible for notifications: active and
// verified accounts only.
func (r *Repos) AlertRecipients(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := sqlx.SelectContext(ctx, r.ext, &out, `
		SELECT `+userColumns+` FROM users
		WHERE is_active AND is_verified
		ORDER BY email`)
	return out, err
}
