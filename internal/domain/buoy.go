package domain

import (
	"fmt"
	"math"
	"time"
)

const earthRadiusKm = 6371.0

// Buoy is a NOAA monitoring station. The ID is the externally assigned
// station identifier (e.g. "44025") and is stable for the life of the
// station, so it doubles as the primary key.
type Buoy struct {
	ID                string     `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Description       *string    `db:"description" json:"description,omitempty"`
	Latitude          float64    `db:"latitude" json:"latitude"`
	Longitude         float64    `db:"longitude" json:"longitude"`
	WaterDepthMeters  *float64   `db:"water_depth_meters" json:"water_depth_meters,omitempty"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	Status            string     `db:"status" json:"status"`
	StationType       *string    `db:"station_type" json:"station_type,omitempty"`
	SensorTypes       StringList `db:"sensor_types" json:"sensor_types,omitempty"`
	DataQualityScore  *float64   `db:"data_quality_score" json:"data_quality_score,omitempty"`
	LastMaintenance   *time.Time `db:"last_maintenance" json:"last_maintenance,omitempty"`
	FirstReadingAt    *time.Time `db:"first_reading_at" json:"first_reading_at,omitempty"`
	LastReadingAt     *time.Time `db:"last_reading_at" json:"last_reading_at,omitempty"`
	OwnerOrganization *string    `db:"owner_organization" json:"owner_organization,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// DistanceTo returns the great-circle distance in kilometers from the
// station to the given point, via the Haversine formula.
func (b *Buoy) DistanceTo(lat, lon float64) float64 {
	lat1 := b.Latitude * math.Pi / 180
	lon1 := b.Longitude * math.Pi / 180
	lat2 := lat * math.Pi / 180
	lon2 := lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)

	return 2 * math.Asin(math.Sqrt(a)) * earthRadiusKm
}

// IsReporting reports whether the station has produced data in the last 24h.
func (b *Buoy) IsReporting() bool {
	return b.isReportingAt(time.Now().UTC())
}

func (b *Buoy) isReportingAt(now time.Time) bool {
	if b.LastReadingAt == nil {
		return false
	}
	return b.LastReadingAt.After(now.Add(-24 * time.Hour))
}

// UpdateLastReading records the most recent reading time. The first-seen
// timestamp is seeded only once and never overwritten.
func (b *Buoy) UpdateLastReading(ts time.Time) {
	t := ts
	b.LastReadingAt = &t
	if b.FirstReadingAt == nil {
		first := ts
		b.FirstReadingAt = &first
	}
}

// HasSensor reports whether the station carries the given sensor type.
func (b *Buoy) HasSensor(sensorType string) bool {
	for _, s := range b.SensorTypes {
		if s == sensorType {
			return true
		}
	}
	return false
}

// BuoyFromNOAAMetadata maps a NOAA station-metadata payload onto a Buoy.
func BuoyFromNOAAMetadata(stationID string, meta map[string]any) *Buoy {
	b := &Buoy{
		ID:       stationID,
		Name:     fmt.Sprintf("Station %s", stationID),
		IsActive: true,
		Status:   "active",
	}
	if name, ok := meta["name"].(string); ok && name != "" {
		b.Name = name
	}
	if desc, ok := meta["description"].(string); ok {
		b.Description = &desc
	}
	if lat, ok := toFloat(meta["lat"]); ok {
		b.Latitude = lat
	}
	if lon, ok := toFloat(meta["lon"]); ok {
		b.Longitude = lon
	}
	if depth, ok := toFloat(meta["depth"]); ok {
		b.WaterDepthMeters = &depth
	}
	stationType := "buoy"
	if st, ok := meta["type"].(string); ok && st != "" {
		stationType = st
	}
	b.StationType = &stationType
	if sensors, ok := meta["sensors"].([]any); ok {
		for _, s := range sensors {
			if str, ok := s.(string); ok {
				b.SensorTypes = append(b.SensorTypes, str)
			}
		}
	}
	owner := "NOAA"
	if o, ok := meta["owner"].(string); ok && o != "" {
		owner = o
	}
	b.OwnerOrganization = &owner
	return b
}

// BuoyView is the API response shape for a station.
type BuoyView struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	IsActive         bool       `json:"is_active"`
	Status           string     `json:"status"`
	StationType      *string    `json:"station_type,omitempty"`
	SensorTypes      []string   `json:"sensor_types,omitempty"`
	DataQualityScore *float64   `json:"data_quality_score,omitempty"`
	IsReporting      bool       `json:"is_reporting"`
	FirstReadingAt   *time.Time `json:"first_reading_at,omitempty"`
	LastReadingAt    *time.Time `json:"last_reading_at,omitempty"`
}

func (b *Buoy) ToAPI() BuoyView {
	return BuoyView{
		ID:               b.ID,
		Name:             b.Name,
		Latitude:         b.Latitude,
		Longitude:        b.Longitude,
		IsActive:         b.IsActive,
		Status:           b.Status,
		StationType:      b.StationType,
		SensorTypes:      b.SensorTypes,
		DataQualityScore: b.DataQualityScore,
		IsReporting:      b.IsReporting(),
		FirstReadingAt:   b.FirstReadingAt,
		LastReadingAt:    b.LastReadingAt,
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
