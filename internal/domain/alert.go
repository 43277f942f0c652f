package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertType classifies the condition that raised an alert.
type AlertType string

const (
	AlertHighWaves        AlertType = "HIGH_WAVES"
	AlertExtremeWaves     AlertType = "EXTREME_WAVES"
	AlertHighWind         AlertType = "HIGH_WIND"
	AlertExtremeWind      AlertType = "EXTREME_WIND"
	AlertLowPressure      AlertType = "LOW_PRESSURE"
	AlertStormWarning     AlertType = "STORM_WARNING"
	AlertEquipmentFailure AlertType = "EQUIPMENT_FAILURE"
	AlertDataAnomaly      AlertType = "DATA_ANOMALY"
)

// AlertSeverity is ordered LOW < MEDIUM < HIGH < CRITICAL.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "LOW"
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// AlertStatus tracks the lifecycle of an alert. ACTIVE is the initial state.
// Acknowledge, Resolve and Cancel are independent setters: any status can
// move to any other. Guarded transitions were considered and rejected to
// keep parity with existing callers (see DESIGN.md).
type AlertStatus string

const (
	StatusActive       AlertStatus = "ACTIVE"
	StatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	StatusResolved     AlertStatus = "RESOLVED"
	StatusCancelled    AlertStatus = "CANCELLED"
)

// Alert is a derived record signaling a threshold exceedance tied to a
// reading. The trigger reading reference is nullable: an alert outlives the
// deletion of the reading that raised it.
type Alert struct {
	ID                   uuid.UUID     `db:"id" json:"id"`
	BuoyID               string        `db:"buoy_id" json:"buoy_id"`
	AlertType            AlertType     `db:"alert_type" json:"alert_type"`
	Severity             AlertSeverity `db:"severity" json:"severity"`
	Status               AlertStatus   `db:"status" json:"status"`
	Title                string        `db:"title" json:"title"`
	Description          string        `db:"description" json:"description"`
	ThresholdValue       *float64      `db:"threshold_value" json:"threshold_value,omitempty"`
	MeasuredValue        *float64      `db:"measured_value" json:"measured_value,omitempty"`
	MeasurementUnit      *string       `db:"measurement_unit" json:"measurement_unit,omitempty"`
	DetectedAt           time.Time     `db:"detected_at" json:"detected_at"`
	ExpiresAt            *time.Time    `db:"expires_at" json:"expires_at,omitempty"`
	AcknowledgedAt       *time.Time    `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	ResolvedAt           *time.Time    `db:"resolved_at" json:"resolved_at,omitempty"`
	Latitude             *float64      `db:"latitude" json:"latitude,omitempty"`
	Longitude            *float64      `db:"longitude" json:"longitude,omitempty"`
	ImpactRadiusKm       *float64      `db:"impact_radius_km" json:"impact_radius_km,omitempty"`
	AcknowledgedBy       *string       `db:"acknowledged_by" json:"acknowledged_by,omitempty"`
	Notes                *string       `db:"notes" json:"notes,omitempty"`
	NotificationSent     bool          `db:"notification_sent" json:"notification_sent"`
	NotificationChannels *string       `db:"notification_channels" json:"notification_channels,omitempty"`
	TriggerReadingID     *uuid.UUID    `db:"trigger_reading_id" json:"trigger_reading_id,omitempty"`
	ContextData          *string       `db:"context_data" json:"context_data,omitempty"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updated_at"`
}

func (a *Alert) IsActive() bool { return a.Status == StatusActive }

// IsExpired reports whether the alert has passed its expiry. Alerts with no
// expiry never expire.
func (a *Alert) IsExpired() bool {
	return a.isExpiredAt(time.Now().UTC())
}

func (a *Alert) isExpiredAt(now time.Time) bool {
	if a.ExpiresAt == nil {
		return false
	}
	return now.After(*a.ExpiresAt)
}

// AgeMinutes returns minutes since detection, zero if never detected.
func (a *Alert) AgeMinutes() float64 {
	return a.ageMinutesAt(time.Now().UTC())
}

func (a *Alert) ageMinutesAt(now time.Time) float64 {
	if a.DetectedAt.IsZero() {
		return 0
	}
	return now.Sub(a.DetectedAt).Minutes()
}

// DurationMinutes returns how long the condition lasted, nil while open.
func (a *Alert) DurationMinutes() *float64 {
	if a.ResolvedAt == nil || a.DetectedAt.IsZero() {
		return nil
	}
	d := a.ResolvedAt.Sub(a.DetectedAt).Minutes()
	return &d
}

var severityBaseScores = map[AlertSeverity]int{
	SeverityLow:      10,
	SeverityMedium:   20,
	SeverityHigh:     30,
	SeverityCritical: 40,
}

var severityColors = map[AlertSeverity]string{
	SeverityLow:      "#FFC107",
	SeverityMedium:   "#FF9800",
	SeverityHigh:     "#F44336",
	SeverityCritical: "#9C27B0",
}

// PriorityScore ranks alerts for dashboard sorting: severity base score,
// +10 when fresher than an hour, +5 while still active.
func (a *Alert) PriorityScore() int {
	return a.priorityScoreAt(time.Now().UTC())
}

func (a *Alert) priorityScoreAt(now time.Time) int {
	score := severityBaseScores[a.Severity]
	if a.ageMinutesAt(now) < 60 {
		score += 10
	}
	if a.IsActive() {
		score += 5
	}
	return score
}

// SeverityColor returns the dashboard color for the severity band.
func (a *Alert) SeverityColor() string {
	if c, ok := severityColors[a.Severity]; ok {
		return c
	}
	return "#757575"
}

// Acknowledge marks the alert as seen by a user. Notes replace any earlier
// text.
func (a *Alert) Acknowledge(userID string, notes string) {
	a.Status = StatusAcknowledged
	now := time.Now().UTC()
	a.AcknowledgedAt = &now
	a.AcknowledgedBy = &userID
	if notes != "" {
		a.Notes = &notes
	}
}

// Resolve marks the underlying condition as cleared. Notes append to any
// earlier text.
func (a *Alert) Resolve(notes string) {
	a.Status = StatusResolved
	now := time.Now().UTC()
	a.ResolvedAt = &now
	if notes != "" {
		a.appendNote(notes)
	}
}

// Cancel withdraws the alert (false positive, duplicate, test data). The
// reason is stored bare when there are no earlier notes, otherwise appended
// with a "Cancelled: " marker.
func (a *Alert) Cancel(reason string) {
	a.Status = StatusCancelled
	now := time.Now().UTC()
	a.ResolvedAt = &now
	if reason == "" {
		return
	}
	if a.Notes == nil || *a.Notes == "" {
		a.Notes = &reason
		return
	}
	joined := *a.Notes + "\nCancelled: " + reason
	a.Notes = &joined
}

func (a *Alert) appendNote(note string) {
	if a.Notes == nil || *a.Notes == "" {
		a.Notes = &note
		return
	}
	joined := *a.Notes + "\n" + note
	a.Notes = &joined
}

var alertTitles = map[AlertType]string{
	AlertHighWaves:    "High Wave Alert",
	AlertExtremeWaves: "Extreme Wave Warning",
	AlertHighWind:     "High Wind Alert",
	AlertExtremeWind:  "Extreme Wind Warning",
	AlertLowPressure:  "Low Pressure Alert",
	AlertStormWarning: "Storm Warning",
}

// NewAlertFromReading builds an alert from the reading that tripped a
// threshold. Unmapped types get a generic title and description.
func NewAlertFromReading(r *Reading, alertType AlertType, severity AlertSeverity,
	threshold, measured float64, unit string) *Alert {

	title, ok := alertTitles[alertType]
	if !ok {
		title = fmt.Sprintf("%s Alert", alertType)
	}

	var description string
	switch alertType {
	case AlertHighWaves:
		description = fmt.Sprintf("Wave height of %.1fm exceeds threshold of %.1fm", measured, threshold)
	case AlertExtremeWaves:
		description = fmt.Sprintf("Extreme wave conditions: %.1fm waves detected", measured)
	case AlertHighWind:
		description = fmt.Sprintf("Wind speed of %.1f %s exceeds threshold", measured, unit)
	case AlertExtremeWind:
		description = fmt.Sprintf("Extreme wind conditions: %.1f %s", measured, unit)
	case AlertLowPressure:
		description = fmt.Sprintf("Atmospheric pressure of %.1fmb below normal", measured)
	case AlertStormWarning:
		description = "Storm conditions detected with multiple threshold exceedances"
	default:
		description = "Alert condition detected"
	}

	readingID := r.ID
	return &Alert{
		ID:               uuid.New(),
		BuoyID:           r.BuoyID,
		AlertType:        alertType,
		Severity:         severity,
		Status:           StatusActive,
		Title:            title,
		Description:      description,
		ThresholdValue:   &threshold,
		MeasuredValue:    &measured,
		MeasurementUnit:  &unit,
		DetectedAt:       r.Timestamp,
		TriggerReadingID: &readingID,
	}
}

// AlertView is the API response shape for an alert.
type AlertView struct {
	ID               string   `json:"id"`
	BuoyID           string   `json:"buoy_id"`
	AlertType        string   `json:"alert_type"`
	Severity         string   `json:"severity"`
	Status           string   `json:"status"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ThresholdValue   *float64 `json:"threshold_value"`
	MeasuredValue    *float64 `json:"measured_value"`
	MeasurementUnit  *string  `json:"measurement_unit"`
	DetectedAt       string   `json:"detected_at"`
	ExpiresAt        *string  `json:"expires_at"`
	AcknowledgedAt   *string  `json:"acknowledged_at"`
	ResolvedAt       *string  `json:"resolved_at"`
	AcknowledgedBy   *string  `json:"acknowledged_by"`
	Notes            *string  `json:"notes"`
	NotificationSent bool     `json:"notification_sent"`
	AgeMinutes       float64  `json:"age_minutes"`
	DurationMinutes  *float64 `json:"duration_minutes"`
	SeverityColor    string   `json:"severity_color"`
	PriorityScore    int      `json:"priority_score"`
	IsActive         bool     `json:"is_active"`
	IsExpired        bool     `json:"is_expired"`
}

func (a *Alert) ToAPI() AlertView {
	return AlertView{
		ID:               a.ID.String(),
		BuoyID:           a.BuoyID,
		AlertType:        string(a.AlertType),
		Severity:         string(a.Severity),
		Status:           string(a.Status),
		Title:            a.Title,
		Description:      a.Description,
		ThresholdValue:   a.ThresholdValue,
		MeasuredValue:    a.MeasuredValue,
		MeasurementUnit:  a.MeasurementUnit,
		DetectedAt:       a.DetectedAt.UTC().Format(time.RFC3339),
		ExpiresAt:        formatTimePtr(a.ExpiresAt),
		AcknowledgedAt:   formatTimePtr(a.AcknowledgedAt),
		ResolvedAt:       formatTimePtr(a.ResolvedAt),
		AcknowledgedBy:   a.AcknowledgedBy,
		Notes:            a.Notes,
		NotificationSent: a.NotificationSent,
		AgeMinutes:       a.AgeMinutes(),
		DurationMinutes:  a.DurationMinutes(),
		SeverityColor:    a.SeverityColor(),
		PriorityScore:    a.PriorityScore(),
		IsActive:         a.IsActive(),
		IsExpired:        a.IsExpired(),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
