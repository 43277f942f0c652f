package httpapi

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/cache"
	"github.com/buoywatch/backend/internal/config"
	"github.com/buoywatch/backend/internal/domain"
)

func TestCacheBuoy_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	// Port 1 is never listening, so the cache write fails immediately.
	cacheClient, err := cache.New(&config.Config{
		RedisURL:            "redis://127.0.0.1:1",
		RedisMaxConnections: 1,
	})
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	defer cacheClient.Close()

	s := &Server{cache: cacheClient}
	s.cacheBuoy(context.Background(), &domain.Buoy{ID: "44025", Name: "Long Island"})

	out := buf.String()
	if !strings.Contains(out, "buoy metadata cache fill failed") {
		t.Errorf("log output = %q, want cache failure warning", out)
	}
	if !strings.Contains(out, "44025") {
		t.Errorf("log output = %q, want station id in the event", out)
	}
}
