package domain

import (
	"math"
	"reflect"
	"sort"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }

func TestCheckAlertConditions(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		want    []string
	}{
		{
			name:    "all fields absent",
			reading: Reading{},
			want:    nil,
		},
		{
			name:    "calm conditions",
			reading: Reading{WaveHeight: floatPtr(1.5), WindSpeed: floatPtr(5.0), AtmosphericPressure: floatPtr(1015.0)},
			want:    nil,
		},
		{
			name:    "exactly at wave threshold is not triggered",
			reading: Reading{WaveHeight: floatPtr(4.0)},
			want:    nil,
		},
		{
			name:    "high waves only",
			reading: Reading{WaveHeight: floatPtr(5.0)},
			want:    []string{ConditionHighWaves},
		},
		{
			name:    "extreme waves imply high waves",
			reading: Reading{WaveHeight: floatPtr(9.0)},
			want:    []string{ConditionExtremeWaves, ConditionHighWaves},
		},
		{
			name:    "high wind only",
			reading: Reading{WindSpeed: floatPtr(13.0)},
			want:    []string{ConditionHighWind},
		},
		{
			name:    "extreme wind implies high wind",
			reading: Reading{WindSpeed: floatPtr(26.0)},
			want:    []string{ConditionExtremeWind, ConditionHighWind},
		},
		{
			name:    "low pressure",
			reading: Reading{AtmosphericPressure: floatPtr(999.0)},
			want:    []string{ConditionLowPressure},
		},
		{
			name: "storm stacks every condition",
			reading: Reading{
				WaveHeight:          floatPtr(10.0),
				WindSpeed:           floatPtr(30.0),
				AtmosphericPressure: floatPtr(980.0),
			},
			want: []string{
				ConditionExtremeWaves, ConditionExtremeWind, ConditionHighWaves,
				ConditionHighWind, ConditionLowPressure,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.reading.CheckAlertConditions()
			sort.Strings(got)
			want := append([]string(nil), tt.want...)
			sort.Strings(want)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("CheckAlertConditions() = %v, want %v", got, want)
			}
		})
	}
}

func TestConditionsSummary(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		want    string
	}{
		{
			name:    "no data",
			reading: Reading{},
			want:    "No data",
		},
		{
			name:    "waves only",
			reading: Reading{WaveHeight: floatPtr(3.2)},
			want:    "Waves: 3.2m",
		},
		{
			name:    "wind converted to mph",
			reading: Reading{WindSpeed: floatPtr(10.0)},
			want:    "Wind: 22 mph",
		},
		{
			name:    "water temp converted to fahrenheit",
			reading: Reading{WaterTemperature: floatPtr(20.0)},
			want:    "Water: 68°F",
		},
		{
			name: "all three joined",
			reading: Reading{
				WaveHeight:       floatPtr(3.2),
				WindSpeed:        floatPtr(10.0),
				WaterTemperature: floatPtr(20.0),
			},
			want: "Waves: 3.2m, Wind: 22 mph, Water: 68°F",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reading.ConditionsSummary(); got != tt.want {
				t.Errorf("ConditionsSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAgeMinutes(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("zero timestamp is infinite", func(t *testing.T) {
		r := Reading{}
		if got := r.ageMinutesAt(now); !math.IsInf(got, 1) {
			t.Errorf("ageMinutesAt() = %v, want +Inf", got)
		}
	})

	t.Run("thirty minutes", func(t *testing.T) {
		r := Reading{Timestamp: now.Add(-30 * time.Minute)}
		if got := r.ageMinutesAt(now); math.Abs(got-30) > 1e-9 {
			t.Errorf("ageMinutesAt() = %v, want 30", got)
		}
	})
}

func TestReadingFromNOAAData_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	raw := map[string]any{"WVHT": 3.2, "WSPD": 10.0}

	r := ReadingFromNOAAData("44025", ts, raw)
	view := r.ToAPI(false)

	if view.WaveHeight == nil || *view.WaveHeight != 3.2 {
		t.Errorf("wave_height = %v, want 3.2", view.WaveHeight)
	}
	if view.WindSpeed == nil || *view.WindSpeed != 10.0 {
		t.Errorf("wind_speed = %v, want 10.0", view.WindSpeed)
	}
	if view.BuoyID != "44025" {
		t.Errorf("buoy_id = %q, want %q", view.BuoyID, "44025")
	}
	if view.WavePeriod != nil {
		t.Errorf("wave_period = %v, want nil for absent sensor", view.WavePeriod)
	}
}

func TestReadingFromNOAAData_Metadata(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	r := ReadingFromNOAAData("44025", ts, map[string]any{"PRES": 1013.2})

	if r.Source == nil || *r.Source != SourceNOAARealtime {
		t.Errorf("Source = %v, want %q", r.Source, SourceNOAARealtime)
	}
	if !r.IsValid {
		t.Errorf("IsValid = false, want true for fresh reading")
	}
	if r.RawData == nil {
		t.Fatalf("RawData = nil, want original payload retained")
	}
	if v, ok := r.RawData["PRES"]; !ok || v != 1013.2 {
		t.Errorf("RawData[PRES] = %v, want 1013.2", v)
	}
	if r.AtmosphericPressure == nil || *r.AtmosphericPressure != 1013.2 {
		t.Errorf("AtmosphericPressure = %v, want 1013.2", r.AtmosphericPressure)
	}
}

func TestReadingToAPI_MetadataGate(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	r := ReadingFromNOAAData("44025", ts, map[string]any{"WVHT": 1.0})

	bare := r.ToAPI(false)
	if bare.ID != "" || bare.Source != nil || bare.AgeMinutes != nil {
		t.Errorf("ToAPI(false) leaked metadata: %+v", bare)
	}

	full := r.ToAPI(true)
	if full.ID == "" || full.Source == nil || full.AgeMinutes == nil {
		t.Errorf("ToAPI(true) missing metadata: %+v", full)
	}
}
