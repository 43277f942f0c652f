package domain

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AlertPreferences is a user's notification configuration. Stored as a JSON
// overlay: absent fields fall back to DefaultAlertPreferences.
type AlertPreferences struct {
	EmailAlerts         *bool    `json:"email_alerts,omitempty"`
	SMSAlerts           *bool    `json:"sms_alerts,omitempty"`
	WaveHeightThreshold *float64 `json:"wave_height_threshold,omitempty"`
	WindSpeedThreshold  *float64 `json:"wind_speed_threshold,omitempty"`
	PressureThreshold   *float64 `json:"pressure_threshold,omitempty"`
	AlertRadiusKm       *float64 `json:"alert_radius_km,omitempty"`
	QuietHoursStart     *string  `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd       *string  `json:"quiet_hours_end,omitempty"`
}

func (p AlertPreferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *AlertPreferences) Scan(src any) error {
	return scanJSON(src, p)
}

// ResolvedAlertPreferences is the fully-populated preference set after
// merging a user's overlay onto the defaults.
type ResolvedAlertPreferences struct {
	EmailAlerts         bool    `json:"email_alerts"`
	SMSAlerts           bool    `json:"sms_alerts"`
	WaveHeightThreshold float64 `json:"wave_height_threshold"`
	WindSpeedThreshold  float64 `json:"wind_speed_threshold"`
	PressureThreshold   float64 `json:"pressure_threshold"`
	AlertRadiusKm       float64 `json:"alert_radius_km"`
	QuietHoursStart     string  `json:"quiet_hours_start"`
	QuietHoursEnd       string  `json:"quiet_hours_end"`
}

// DefaultAlertPreferences returns the system defaults: email on, SMS off,
// thresholds matching the alerting engine, quiet hours overnight.
func DefaultAlertPreferences() ResolvedAlertPreferences {
	return ResolvedAlertPreferences{
		EmailAlerts:         true,
		SMSAlerts:           false,
		WaveHeightThreshold: 4.0,
		WindSpeedThreshold:  25.0,
		PressureThreshold:   1000.0,
		AlertRadiusKm:       50.0,
		QuietHoursStart:     "22:00",
		QuietHoursEnd:       "06:00",
	}
}

// User is a dashboard account.
type User struct {
	ID                  uuid.UUID         `db:"id" json:"id"`
	Email               string            `db:"email" json:"email"`
	Username            *string           `db:"username" json:"username,omitempty"`
	PasswordHash        string            `db:"password_hash" json:"-"`
	FirstName           *string           `db:"first_name" json:"first_name,omitempty"`
	LastName            *string           `db:"last_name" json:"last_name,omitempty"`
	IsActive            bool              `db:"is_active" json:"is_active"`
	IsVerified          bool              `db:"is_verified" json:"is_verified"`
	IsAdmin             bool              `db:"is_admin" json:"is_admin"`
	DefaultLatitude     *float64          `db:"default_latitude" json:"default_latitude,omitempty"`
	DefaultLongitude    *float64          `db:"default_longitude" json:"default_longitude,omitempty"`
	LocationName        *string           `db:"location_name" json:"location_name,omitempty"`
	AlertPreferences    *AlertPreferences `db:"alert_preferences" json:"alert_preferences,omitempty"`
	FavoriteBuoys       StringList        `db:"favorite_buoys" json:"favorite_buoys,omitempty"`
	SavedLocations      JSONMap           `db:"saved_locations" json:"saved_locations,omitempty"`
	DashboardConfig     JSONMap           `db:"dashboard_config" json:"dashboard_config,omitempty"`
	LastLoginAt         *time.Time        `db:"last_login_at" json:"last_login_at,omitempty"`
	LoginCount          int               `db:"login_count" json:"login_count"`
	PhoneNumber         *string           `db:"phone_number" json:"phone_number,omitempty"`
	Timezone            string            `db:"timezone" json:"timezone"`
	VerificationToken   *string           `db:"verification_token" json:"-"`
	VerificationSentAt  *time.Time        `db:"verification_sent_at" json:"-"`
	ResetToken          *string           `db:"reset_token" json:"-"`
	ResetTokenExpiresAt *time.Time        `db:"reset_token_expires_at" json:"-"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`
}

// NewUser builds an account with a lower-cased, trimmed email.
func NewUser(email, passwordHash string, firstName, lastName, username *string) *User {
	return &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		IsActive:     true,
		Timezone:     "UTC",
	}
}

// FullName assembles a display name, falling back to the email local part.
func (u *User) FullName() string {
	switch {
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	case u.LastName != nil:
		return *u.LastName
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.FullName()
}

func (u *User) HasLocation() bool {
	return u.DefaultLatitude != nil && u.DefaultLongitude != nil
}

// SetLocation records the user's default coordinates.
func (u *User) SetLocation(lat, lon float64, name string) {
	u.DefaultLatitude = &lat
	u.DefaultLongitude = &lon
	if name != "" {
		u.LocationName = &name
	}
}

// AddFavoriteBuoy is idempotent: adding an existing favorite is a no-op.
func (u *User) AddFavoriteBuoy(buoyID string) {
	for _, id := range u.FavoriteBuoys {
		if id == buoyID {
			return
		}
	}
	u.FavoriteBuoys = append(u.FavoriteBuoys, buoyID)
}

// RemoveFavoriteBuoy is idempotent: removing an absent favorite is a no-op.
func (u *User) RemoveFavoriteBuoy(buoyID string) {
	for i, id := range u.FavoriteBuoys {
		if id == buoyID {
			u.FavoriteBuoys = append(u.FavoriteBuoys[:i], u.FavoriteBuoys[i+1:]...)
			return
		}
	}
}

// GetAlertPreferences overlays the stored preferences onto the defaults.
// Stored values win; absent fields fall back.
func (u *User) GetAlertPreferences() ResolvedAlertPreferences {
	resolved := DefaultAlertPreferences()
	p := u.AlertPreferences
	if p == nil {
		return resolved
	}
	if p.EmailAlerts != nil {
		resolved.EmailAlerts = *p.EmailAlerts
	}
	if p.SMSAlerts != nil {
		resolved.SMSAlerts = *p.SMSAlerts
	}
	if p.WaveHeightThreshold != nil {
		resolved.WaveHeightThreshold = *p.WaveHeightThreshold
	}
	if p.WindSpeedThreshold != nil {
		resolved.WindSpeedThreshold = *p.WindSpeedThreshold
	}
	if p.PressureThreshold != nil {
		resolved.PressureThreshold = *p.PressureThreshold
	}
	if p.AlertRadiusKm != nil {
		resolved.AlertRadiusKm = *p.AlertRadiusKm
	}
	if p.QuietHoursStart != nil {
		resolved.QuietHoursStart = *p.QuietHoursStart
	}
	if p.QuietHoursEnd != nil {
		resolved.QuietHoursEnd = *p.QuietHoursEnd
	}
	return resolved
}

// UpdateAlertPreferences merges new overrides into the stored overlay.
func (u *User) UpdateAlertPreferences(updates AlertPreferences) {
	if u.AlertPreferences == nil {
		u.AlertPreferences = &AlertPreferences{}
	}
	p := u.AlertPreferences
	if updates.EmailAlerts != nil {
		p.EmailAlerts = updates.EmailAlerts
	}
	if updates.SMSAlerts != nil {
		p.SMSAlerts = updates.SMSAlerts
	}
	if updates.WaveHeightThreshold != nil {
		p.WaveHeightThreshold = updates.WaveHeightThreshold
	}
	if updates.WindSpeedThreshold != nil {
		p.WindSpeedThreshold = updates.WindSpeedThreshold
	}
	if updates.PressureThreshold != nil {
		p.PressureThreshold = updates.PressureThreshold
	}
	if updates.AlertRadiusKm != nil {
		p.AlertRadiusKm = updates.AlertRadiusKm
	}
	if updates.QuietHoursStart != nil {
		p.QuietHoursStart = updates.QuietHoursStart
	}
	if updates.QuietHoursEnd != nil {
		p.QuietHoursEnd = updates.QuietHoursEnd
	}
}

// VerifyEmail marks the address as confirmed and clears the pending token.
func (u *User) VerifyEmail() {
	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationSentAt = nil
}

// RecordLogin bumps the login counter and timestamp.
func (u *User) RecordLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
	u.LoginCount++
}

// CanReceiveAlerts requires an active, verified account.
func (u *User) CanReceiveAlerts() bool {
	return u.IsActive && u.IsVerified
}

// UserView is the API response shape for an account. Sensitive fields are
// gated behind includeSensitive.
type UserView struct {
	ID               string                    `json:"id"`
	Email            string                    `json:"email"`
	Username         *string                   `json:"username"`
	FirstName        *string                   `json:"first_name"`
	LastName         *string                   `json:"last_name"`
	FullName         string                    `json:"full_name"`
	DisplayName      string                    `json:"display_name"`
	IsActive         bool                      `json:"is_active"`
	IsVerified       bool                      `json:"is_verified"`
	IsAdmin          bool                      `json:"is_admin"`
	DefaultLatitude  *float64                  `json:"default_latitude"`
	DefaultLongitude *float64                  `json:"default_longitude"`
	LocationName     *string                   `json:"location_name"`
	HasLocation      bool                      `json:"has_location"`
	Timezone         string                    `json:"timezone"`
	CreatedAt        string                    `json:"created_at"`
	LastLoginAt      *string                   `json:"last_login_at"`
	LoginCount       int                       `json:"login_count"`
	FavoriteBuoys    []string                  `json:"favorite_buoys"`
	PhoneNumber      *string                   `json:"phone_number,omitempty"`
	AlertPreferences *ResolvedAlertPreferences `json:"alert_preferences,omitempty"`
	DashboardConfig  JSONMap                   `json:"dashboard_config,omitempty"`
	SavedLocations   JSONMap                   `json:"saved_locations,omitempty"`
}

func (u *User) ToAPI(includeSensitive bool) UserView {
	v := UserView{
		ID:               u.ID.String(),
		Email:            u.Email,
		Username:         u.Username,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		FullName:         u.FullName(),
		DisplayName:      u.DisplayName(),
		IsActive:         u.IsActive,
		IsVerified:       u.IsVerified,
		IsAdmin:          u.IsAdmin,
		DefaultLatitude:  u.DefaultLatitude,
		DefaultLongitude: u.DefaultLongitude,
		LocationName:     u.LocationName,
		HasLocation:      u.HasLocation(),
		Timezone:         u.Timezone,
		CreatedAt:        u.CreatedAt.UTC().Format(time.RFC3339),
		LastLoginAt:      formatTimePtr(u.LastLoginAt),
		LoginCount:       u.LoginCount,
		FavoriteBuoys:    u.FavoriteBuoys,
	}
	if v.FavoriteBuoys == nil {
		v.FavoriteBuoys = []string{}
	}
	if includeSensitive {
		v.PhoneNumber = u.PhoneNumber
		prefs := u.GetAlertPreferences()
		v.AlertPreferences = &prefs
		v.DashboardConfig = u.DashboardConfig
		v.SavedLocations = u.SavedLocations
	}
	return v
}
