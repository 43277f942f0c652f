package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Alert condition tags produced by threshold evaluation. A single reading
// can carry several at once; 9m waves are both HIGH_WAVES and EXTREME_WAVES.
const (
	ConditionHighWaves    = "HIGH_WAVES"
	ConditionExtremeWaves = "EXTREME_WAVES"
	ConditionHighWind     = "HIGH_WIND"
	ConditionExtremeWind  = "EXTREME_WIND"
	ConditionLowPressure  = "LOW_PRESSURE"
)

// Fixed evaluation thresholds, in stored (SI) units.
const (
	HighWaveThresholdM     = 4.0
	ExtremeWaveThresholdM  = 8.0
	HighWindThresholdMS    = 12.5
	ExtremeWindThresholdMS = 25.0
	LowPressureThresholdMB = 1000.0
)

const SourceNOAARealtime = "NOAA_REALTIME"

// Reading is one timestamped multi-sensor sample from a station. Every
// measurement is optional: a sensor may be absent or faulty, and NOAA feeds
// routinely omit columns.
type Reading struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	BuoyID              string     `db:"buoy_id" json:"buoy_id"`
	Timestamp           time.Time  `db:"timestamp" json:"timestamp"`
	WaveHeight          *float64   `db:"wave_height" json:"wave_height,omitempty"`
	WavePeriod          *float64   `db:"wave_period" json:"wave_period,omitempty"`
	WaveDirection       *float64   `db:"wave_direction" json:"wave_direction,omitempty"`
	WindSpeed           *float64   `db:"wind_speed" json:"wind_speed,omitempty"`
	WindDirection       *float64   `db:"wind_direction" json:"wind_direction,omitempty"`
	WindGust            *float64   `db:"wind_gust" json:"wind_gust,omitempty"`
	AtmosphericPressure *float64   `db:"atmospheric_pressure" json:"atmospheric_pressure,omitempty"`
	AirTemperature      *float64   `db:"air_temperature" json:"air_temperature,omitempty"`
	WaterTemperature    *float64   `db:"water_temperature" json:"water_temperature,omitempty"`
	Visibility          *float64   `db:"visibility" json:"visibility,omitempty"`
	Humidity            *float64   `db:"humidity" json:"humidity,omitempty"`
	DewPoint            *float64   `db:"dew_point" json:"dew_point,omitempty"`
	SeaLevelPressure    *float64   `db:"sea_level_pressure" json:"sea_level_pressure,omitempty"`
	QualityFlags        JSONMap    `db:"quality_flags" json:"quality_flags,omitempty"`
	QualityScore        *float64   `db:"quality_score" json:"quality_score,omitempty"`
	IsValid             bool       `db:"is_valid" json:"is_valid"`
	Source              *string    `db:"source" json:"source,omitempty"`
	RawData             JSONMap    `db:"raw_data" json:"raw_data,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	ProcessedAt         *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// AgeMinutes returns minutes since the measurement was taken. A zero
// timestamp means the reading was never received; that is reported as +Inf,
// which fails every "younger than" comparison.
func (r *Reading) AgeMinutes() float64 {
	return r.ageMinutesAt(time.Now().UTC())
}

func (r *Reading) ageMinutesAt(now time.Time) float64 {
	if r.Timestamp.IsZero() {
		return math.Inf(1)
	}
	return now.Sub(r.Timestamp).Minutes()
}

// IsRecent reports whether the reading is from the last hour.
func (r *Reading) IsRecent() bool {
	return r.AgeMinutes() <= 60
}

// CheckAlertConditions tests each measurement against its fixed threshold.
// Conditions are independent and non-exclusive.
func (r *Reading) CheckAlertConditions() []string {
	var conditions []string

	if r.WaveHeight != nil && *r.WaveHeight > HighWaveThresholdM {
		conditions = append(conditions, ConditionHighWaves)
	}
	if r.WindSpeed != nil && *r.WindSpeed > HighWindThresholdMS {
		conditions = append(conditions, ConditionHighWind)
	}
	if r.AtmosphericPressure != nil && *r.AtmosphericPressure < LowPressureThresholdMB {
		conditions = append(conditions, ConditionLowPressure)
	}
	if r.WaveHeight != nil && *r.WaveHeight > ExtremeWaveThresholdM {
		conditions = append(conditions, ConditionExtremeWaves)
	}
	if r.WindSpeed != nil && *r.WindSpeed > ExtremeWindThresholdMS {
		conditions = append(conditions, ConditionExtremeWind)
	}

	return conditions
}

// ConditionsSummary renders a human-readable one-liner. Wind is shown in
// mph and water temperature in °F for display only; stored units stay SI.
func (r *Reading) ConditionsSummary() string {
	var parts []string

	if r.WaveHeight != nil {
		parts = append(parts, fmt.Sprintf("Waves: %.1fm", *r.WaveHeight))
	}
	if r.WindSpeed != nil {
		parts = append(parts, fmt.Sprintf("Wind: %.0f mph", *r.WindSpeed*2.237))
	}
	if r.WaterTemperature != nil {
		parts = append(parts, fmt.Sprintf("Water: %.0f°F", *r.WaterTemperature*9/5+32))
	}

	if len(parts) == 0 {
		return "No data"
	}
	return strings.Join(parts, ", ")
}

// ReadingFromNOAAData maps a raw NOAA realtime2 record (standard column
// abbreviations) onto a Reading, keeping the original payload for
// reprocessing.
func ReadingFromNOAAData(buoyID string, ts time.Time, raw map[string]any) *Reading {
	r := &Reading{
		ID:        uuid.New(),
		BuoyID:    buoyID,
		Timestamp: ts,
		IsValid:   true,
	}
	source := SourceNOAARealtime
	r.Source = &source

	r.WaveHeight = noaaField(raw, "WVHT")
	r.WavePeriod = noaaField(raw, "DPD")
	r.WaveDirection = noaaField(raw, "MWD")
	r.WindSpeed = noaaField(raw, "WSPD")
	r.WindDirection = noaaField(raw, "WDIR")
	r.WindGust = noaaField(raw, "GST")
	r.AtmosphericPressure = noaaField(raw, "PRES")
	r.AirTemperature = noaaField(raw, "ATMP")
	r.WaterTemperature = noaaField(raw, "WTMP")
	r.Visibility = noaaField(raw, "VIS")

	if len(raw) > 0 {
		r.RawData = JSONMap(raw)
	}
	return r
}

func noaaField(raw map[string]any, key string) *float64 {
	if v, ok := toFloat(raw[key]); ok {
		return &v
	}
	return nil
}

// ReadingView is the API response shape for a reading.
type ReadingView struct {
	ID                  string   `json:"id,omitempty"`
	BuoyID              string   `json:"buoy_id"`
	Timestamp           string   `json:"timestamp"`
	WaveHeight          *float64 `json:"wave_height"`
	WavePeriod          *float64 `json:"wave_period"`
	WaveDirection       *float64 `json:"wave_direction"`
	WindSpeed           *float64 `json:"wind_speed"`
	WindDirection       *float64 `json:"wind_direction"`
	WindGust            *float64 `json:"wind_gust"`
	AtmosphericPressure *float64 `json:"atmospheric_pressure"`
	AirTemperature      *float64 `json:"air_temperature"`
	WaterTemperature    *float64 `json:"water_temperature"`
	Visibility          *float64 `json:"visibility"`
	ConditionsSummary   string   `json:"conditions_summary"`
	QualityScore        *float64 `json:"quality_score,omitempty"`
	IsValid             *bool    `json:"is_valid,omitempty"`
	Source              *string  `json:"source,omitempty"`
	AgeMinutes          *float64 `json:"age_minutes,omitempty"`
}

// ToAPI builds the response payload. Metadata fields (id, quality, source,
// age) are included only on request.
func (r *Reading) ToAPI(includeMetadata bool) ReadingView {
	v := ReadingView{
		BuoyID:              r.BuoyID,
		Timestamp:           r.Timestamp.UTC().Format(time.RFC3339),
		WaveHeight:          r.WaveHeight,
		WavePeriod:          r.WavePeriod,
		WaveDirection:       r.WaveDirection,
		WindSpeed:           r.WindSpeed,
		WindDirection:       r.WindDirection,
		WindGust:            r.WindGust,
		AtmosphericPressure: r.AtmosphericPressure,
		AirTemperature:      r.AirTemperature,
		WaterTemperature:    r.WaterTemperature,
		Visibility:          r.Visibility,
		ConditionsSummary:   r.ConditionsSummary(),
	}
	if includeMetadata {
		v.ID = r.ID.String()
		v.QualityScore = r.QualityScore
		valid := r.IsValid
		v.IsValid = &valid
		v.Source = r.Source
		age := r.AgeMinutes()
		v.AgeMinutes = &age
	}
	return v
}
