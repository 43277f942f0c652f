package domain

import (
	"math"
	"testing"
	"time"
)

func TestDistanceTo_Symmetric(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{name: "atlantic stations", lat1: 40.25, lon1: -73.16, lat2: 36.61, lon2: -74.84},
		{name: "across equator", lat1: 10.0, lon1: 20.0, lat2: -10.0, lon2: -20.0},
		{name: "near poles", lat1: 89.0, lon1: 0.0, lat2: -89.0, lon2: 180.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Buoy{Latitude: tt.lat1, Longitude: tt.lon1}
			b := &Buoy{Latitude: tt.lat2, Longitude: tt.lon2}

			d1 := a.DistanceTo(tt.lat2, tt.lon2)
			d2 := b.DistanceTo(tt.lat1, tt.lon1)
			if math.Abs(d1-d2) > 1e-9 {
				t.Errorf("distance not symmetric: %v vs %v", d1, d2)
			}
		})
	}
}

func TestDistanceTo_Zero(t *testing.T) {
	b := &Buoy{Latitude: 40.25, Longitude: -73.16}
	if d := b.DistanceTo(40.25, -73.16); d != 0 {
		t.Errorf("DistanceTo(self) = %v, want 0", d)
	}
}

func TestDistanceTo_KnownDistance(t *testing.T) {
	// New York to Los Angeles, roughly 3936 km great-circle.
	b := &Buoy{Latitude: 40.7128, Longitude: -74.0060}
	d := b.DistanceTo(34.0522, -118.2437)
	if d < 3900 || d > 3970 {
		t.Errorf("NY-LA distance = %v km, want ~3936", d)
	}
}

func TestIsReporting(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		last *time.Time
		want bool
	}{
		{name: "never reported", last: nil, want: false},
		{name: "one hour ago", last: timePtr(now.Add(-time.Hour)), want: true},
		{name: "23h59m ago", last: timePtr(now.Add(-24*time.Hour + time.Minute)), want: true},
		{name: "25 hours ago", last: timePtr(now.Add(-25 * time.Hour)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Buoy{LastReadingAt: tt.last}
			if got := b.isReportingAt(now); got != tt.want {
				t.Errorf("isReportingAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdateLastReading_SeedsFirstOnce(t *testing.T) {
	t1 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)

	b := &Buoy{}
	b.UpdateLastReading(t1)
	b.UpdateLastReading(t2)

	if b.FirstReadingAt == nil || !b.FirstReadingAt.Equal(t1) {
		t.Errorf("FirstReadingAt = %v, want %v", b.FirstReadingAt, t1)
	}
	if b.LastReadingAt == nil || !b.LastReadingAt.Equal(t2) {
		t.Errorf("LastReadingAt = %v, want %v", b.LastReadingAt, t2)
	}
}

func TestHasSensor(t *testing.T) {
	b := &Buoy{SensorTypes: StringList{"wave", "wind"}}
	if !b.HasSensor("wave") {
		t.Errorf("HasSensor(wave) = false, want true")
	}
	if b.HasSensor("pressure") {
		t.Errorf("HasSensor(pressure) = true, want false")
	}
}

func TestBuoyFromNOAAMetadata(t *testing.T) {
	b := BuoyFromNOAAMetadata("44025", map[string]any{
		"name":    "Long Island 30NM South of Islip",
		"lat":     40.25,
		"lon":     -73.16,
		"depth":   36.3,
		"sensors": []any{"wave", "wind", "pressure"},
	})

	if b.ID != "44025" {
		t.Errorf("ID = %q, want %q", b.ID, "44025")
	}
	if b.Name != "Long Island 30NM South of Islip" {
		t.Errorf("Name = %q", b.Name)
	}
	if b.Latitude != 40.25 || b.Longitude != -73.16 {
		t.Errorf("coordinates = (%v, %v), want (40.25, -73.16)", b.Latitude, b.Longitude)
	}
	if len(b.SensorTypes) != 3 {
		t.Errorf("SensorTypes = %v, want 3 entries", b.SensorTypes)
	}
	if !b.IsActive || b.Status != "active" {
		t.Errorf("new station should be active, got active=%v status=%q", b.IsActive, b.Status)
	}
}

func TestBuoyFromNOAAMetadata_MissingName(t *testing.T) {
	b := BuoyFromNOAAMetadata("46042", map[string]any{"lat": 36.79, "lon": -122.4})
	if b.Name != "Station 46042" {
		t.Errorf("Name = %q, want fallback %q", b.Name, "Station 46042")
	}
}

func timePtr(t time.Time) *time.Time { return &t }
