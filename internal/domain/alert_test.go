package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPriorityScore(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		severity AlertSeverity
		status   AlertStatus
		detected time.Time
		want     int
	}{
		{
			name:     "critical active fresh",
			severity: SeverityCritical,
			status:   StatusActive,
			detected: now.Add(-5 * time.Minute),
			want:     55, // 40 base + 10 recent + 5 active
		},
		{
			name:     "low resolved stale",
			severity: SeverityLow,
			status:   StatusResolved,
			detected: now.Add(-3 * time.Hour),
			want:     10,
		},
		{
			name:     "medium active stale",
			severity: SeverityMedium,
			status:   StatusActive,
			detected: now.Add(-2 * time.Hour),
			want:     25,
		},
		{
			name:     "high acknowledged fresh",
			severity: SeverityHigh,
			status:   StatusAcknowledged,
			detected: now.Add(-30 * time.Minute),
			want:     40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Alert{Severity: tt.severity, Status: tt.status, DetectedAt: tt.detected}
			if got := a.priorityScoreAt(now); got != tt.want {
				t.Errorf("priorityScoreAt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no expiry never expires", func(t *testing.T) {
		a := &Alert{}
		if a.isExpiredAt(now) {
			t.Errorf("isExpiredAt() = true, want false with nil ExpiresAt")
		}
	})

	t.Run("past expiry", func(t *testing.T) {
		a := &Alert{ExpiresAt: timePtr(now.Add(-time.Minute))}
		if !a.isExpiredAt(now) {
			t.Errorf("isExpiredAt() = false, want true")
		}
	})

	t.Run("future expiry", func(t *testing.T) {
		a := &Alert{ExpiresAt: timePtr(now.Add(time.Hour))}
		if a.isExpiredAt(now) {
			t.Errorf("isExpiredAt() = true, want false")
		}
	})
}

func TestLifecycleSetters(t *testing.T) {
	t.Run("acknowledge", func(t *testing.T) {
		a := &Alert{Status: StatusActive}
		a.Acknowledge("user-1", "looking into it")

		if a.Status != StatusAcknowledged {
			t.Errorf("Status = %q, want %q", a.Status, StatusAcknowledged)
		}
		if a.AcknowledgedAt == nil || a.AcknowledgedBy == nil || *a.AcknowledgedBy != "user-1" {
			t.Errorf("acknowledgement fields not set: at=%v by=%v", a.AcknowledgedAt, a.AcknowledgedBy)
		}
		if a.Notes == nil || *a.Notes != "looking into it" {
			t.Errorf("Notes = %v, want note recorded", a.Notes)
		}
	})

	t.Run("acknowledge replaces notes", func(t *testing.T) {
		prior := "stale note"
		a := &Alert{Status: StatusActive, Notes: &prior}
		a.Acknowledge("user-1", "fresh note")

		if a.Notes == nil || *a.Notes != "fresh note" {
			t.Errorf("Notes = %v, want earlier text replaced", a.Notes)
		}
	})

	t.Run("resolve appends notes", func(t *testing.T) {
		a := &Alert{Status: StatusAcknowledged}
		a.Acknowledge("user-1", "first note")
		a.Resolve("second note")

		if a.Status != StatusResolved {
			t.Errorf("Status = %q, want %q", a.Status, StatusResolved)
		}
		if a.Notes == nil || *a.Notes != "first note\nsecond note" {
			t.Errorf("Notes = %v, want both notes joined", a.Notes)
		}
	})

	t.Run("cancel with no notes stores bare reason", func(t *testing.T) {
		a := &Alert{Status: StatusActive}
		a.Cancel("sensor glitch")

		if a.Status != StatusCancelled {
			t.Errorf("Status = %q, want %q", a.Status, StatusCancelled)
		}
		if a.Notes == nil || *a.Notes != "sensor glitch" {
			t.Errorf("Notes = %v, want bare reason", a.Notes)
		}
		if a.ResolvedAt == nil {
			t.Errorf("ResolvedAt = nil, want set on cancel")
		}
	})

	t.Run("cancel after notes appends with marker", func(t *testing.T) {
		prior := "operator note"
		a := &Alert{Status: StatusActive, Notes: &prior}
		a.Cancel("duplicate")

		if a.Notes == nil || *a.Notes != "operator note\nCancelled: duplicate" {
			t.Errorf("Notes = %v, want marker-joined reason", a.Notes)
		}
	})

	// The lifecycle is deliberately unguarded: any status may follow any
	// other. This pins the permissive behavior so a future guard is a
	// conscious change.
	t.Run("resolve after cancel still flips status", func(t *testing.T) {
		a := &Alert{Status: StatusActive}
		a.Cancel("dup")
		a.Resolve("cleared anyway")

		if a.Status != StatusResolved {
			t.Errorf("Status = %q, want %q", a.Status, StatusResolved)
		}
	})
}

func TestDurationMinutes(t *testing.T) {
	detected := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("open alert has no duration", func(t *testing.T) {
		a := &Alert{DetectedAt: detected}
		if d := a.DurationMinutes(); d != nil {
			t.Errorf("DurationMinutes() = %v, want nil", *d)
		}
	})

	t.Run("resolved alert", func(t *testing.T) {
		a := &Alert{DetectedAt: detected, ResolvedAt: timePtr(detected.Add(90 * time.Minute))}
		d := a.DurationMinutes()
		if d == nil || *d != 90 {
			t.Errorf("DurationMinutes() = %v, want 90", d)
		}
	})
}

func TestNewAlertFromReading(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	reading := &Reading{ID: uuid.New(), BuoyID: "44025", Timestamp: ts, WaveHeight: floatPtr(5.2)}

	t.Run("mapped type gets template", func(t *testing.T) {
		a := NewAlertFromReading(reading, AlertHighWaves, SeverityHigh, 4.0, 5.2, "m")

		if a.Title != "High Wave Alert" {
			t.Errorf("Title = %q, want %q", a.Title, "High Wave Alert")
		}
		if !strings.Contains(a.Description, "5.2m") || !strings.Contains(a.Description, "4.0m") {
			t.Errorf("Description = %q, want measured and threshold values", a.Description)
		}
		if a.Status != StatusActive {
			t.Errorf("Status = %q, want initial %q", a.Status, StatusActive)
		}
		if a.TriggerReadingID == nil || *a.TriggerReadingID != reading.ID {
			t.Errorf("TriggerReadingID = %v, want %v", a.TriggerReadingID, reading.ID)
		}
		if !a.DetectedAt.Equal(ts) {
			t.Errorf("DetectedAt = %v, want reading timestamp %v", a.DetectedAt, ts)
		}
	})

	t.Run("unmapped type falls back to generic", func(t *testing.T) {
		a := NewAlertFromReading(reading, AlertEquipmentFailure, SeverityMedium, 0, 0, "")

		if a.Title != "EQUIPMENT_FAILURE Alert" {
			t.Errorf("Title = %q, want generic fallback", a.Title)
		}
		if a.Description != "Alert condition detected" {
			t.Errorf("Description = %q, want generic fallback", a.Description)
		}
	})
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity AlertSeverity
		want     string
	}{
		{SeverityLow, "#FFC107"},
		{SeverityMedium, "#FF9800"},
		{SeverityHigh, "#F44336"},
		{SeverityCritical, "#9C27B0"},
		{AlertSeverity("UNKNOWN"), "#757575"},
	}

	for _, tt := range tests {
		a := &Alert{Severity: tt.severity}
		if got := a.SeverityColor(); got != tt.want {
			t.Errorf("SeverityColor(%s) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}
