package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/database"
)

const apiVersion = "1.0.0"

func (s *Server) root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":    "BuoyWatch API",
		"status":     "operational",
		"version":    apiVersion,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"monitoring": "/metrics",
	})
}

// health aggregates sub-checks: overall "healthy" only when every service
// reports healthy, otherwise "degraded". Always 200; 503 only when the
// check itself blows up.
func (s *Server) health(c *fiber.Ctx) error {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("health check failed")
			_ = c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"detail": "Service temporarily unavailable",
			})
		}
	}()

	redisStatus := "healthy"
	if err := s.pingCache(c.Context()); err != nil {
		redisStatus = "unhealthy: " + err.Error()
	}

	// TODO: probe the database pool here instead of assuming healthy.
	dbStatus := "healthy"

	overall := "healthy"
	if redisStatus != "healthy" || dbStatus != "healthy" {
		overall = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": fiber.Map{
			"redis":    redisStatus,
			"database": dbStatus,
			"api":      "healthy",
		},
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

// metrics is a placeholder descriptor; it reports pool diagnostics but not
// Prometheus exposition format yet.
func (s *Server) metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":            "Metrics endpoint - Prometheus integration coming soon",
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"db_pool":            database.Stats(s.db),
		"active_connections": database.ActiveConnections(c.Context(), s.db),
	})
}
