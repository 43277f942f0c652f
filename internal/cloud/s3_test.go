package cloud

import (
	"testing"
	"time"
)

func TestArchiveKey(t *testing.T) {
	day := time.Date(2025, 6, 15, 23, 45, 0, 0, time.UTC)
	if got, want := ArchiveKey(day), "raw/2025/06/15/readings.json"; got != want {
		t.Errorf("ArchiveKey() = %q, want %q", got, want)
	}
}

func TestArchiveKeyDate(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
		got, ok := ArchiveKeyDate(ArchiveKey(day))
		if !ok {
			t.Fatalf("ArchiveKeyDate() ok = false, want parsed")
		}
		if !got.Equal(day) {
			t.Errorf("ArchiveKeyDate() = %v, want %v", got, day)
		}
	})

	t.Run("foreign keys are skipped", func(t *testing.T) {
		for _, key := range []string{
			"raw/2025/06/15/other.json",
			"exports/2025/06/15/readings.json",
			"raw/readings.json",
			"",
		} {
			if _, ok := ArchiveKeyDate(key); ok {
				t.Errorf("ArchiveKeyDate(%q) ok = true, want false", key)
			}
		}
	})
}
