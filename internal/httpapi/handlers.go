package httpapi

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/cache"
	"github.com/buoywatch/backend/internal/config"
	"github.com/buoywatch/backend/internal/domain"
	"github.com/buoywatch/backend/internal/service"
)

// Server carries the dependencies the HTTP handlers need.
type Server struct {
	cfg     *config.Config
	svcs    *service.Services
	cache   *cache.Client
	db      *sqlx.DB
	started time.Time
}

func NewServer(cfg *config.Config, svcs *service.Services, cacheClient *cache.Client, db *sqlx.DB) *Server {
	return &Server{
		cfg:     cfg,
		svcs:    svcs,
		cache:   cacheClient,
		db:      db,
		started: time.Now().UTC(),
	}
}

// Register mounts all routes on the app.
func (s *Server) Register(app *fiber.App) {
	app.Get("/", s.root)
	app.Get("/health", s.health)
	app.Get("/metrics", s.metrics)

	api := app.Group("/api")

	buoys := api.Group("/buoys")
	buoys.Get("/", s.listBuoys)
	buoys.Get("/nearest", s.nearestBuoys)
	buoys.Get("/:id", s.getBuoy)
	buoys.Get("/:id/readings", s.buoyReadings)

	readings := api.Group("/readings")
	readings.Get("/latest/:buoyID", s.latestReading)

	alerts := api.Group("/alerts")
	alerts.Get("/", s.activeAlerts)
	alerts.Post("/:id/acknowledge", s.acknowledgeAlert)
	alerts.Post("/:id/resolve", s.resolveAlert)
	alerts.Post("/:id/cancel", s.cancelAlert)
}

func (s *Server) listBuoys(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)
	buoys, err := s.svcs.Repos.ListBuoys(c.Context(), activeOnly)
	if err != nil {
		return internalError(c, err)
	}
	views := make([]domain.BuoyView, 0, len(buoys))
	for i := range buoys {
		views = append(views, buoys[i].ToAPI())
	}
	return c.JSON(views)
}

func (s *Server) getBuoy(c *fiber.Ctx) error {
	id := c.Params("id")

	if cached, err := s.cache.GetBuoyMetadata(c.Context(), id); err == nil {
		return c.JSON(cached.ToAPI())
	}

	b, err := s.svcs.Repos.GetBuoy(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}
	if b == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "buoy not found"})
	}
	s.cacheBuoy(c.Context(), b)
	return c.JSON(b.ToAPI())
}

// cacheBuoy is a best-effort fill of the metadata cache; failures are logged
// and never surface to the client.
func (s *Server) cacheBuoy(ctx context.Context, b *domain.Buoy) {
	if err := s.cache.SetBuoyMetadata(ctx, b); err != nil {
		log.Warn().Err(err).Str("buoy_id", b.ID).Msg("buoy metadata cache fill failed")
	}
}

func (s *Server) nearestBuoys(c *fiber.Ctx) error {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat and lon are required"})
	}
	limit := c.QueryInt("limit", 10)

	buoys, err := s.svcs.Repos.NearestBuoys(c.Context(), lat, lon, limit)
	if err != nil {
		return internalError(c, err)
	}

	type nearestView struct {
		domain.BuoyView
		DistanceKm float64 `json:"distance_km"`
	}
	views := make([]nearestView, 0, len(buoys))
	for i := range buoys {
		views = append(views, nearestView{
			BuoyView:   buoys[i].ToAPI(),
			DistanceKm: buoys[i].DistanceTo(lat, lon),
		})
	}
	return c.JSON(views)
}

func (s *Server) buoyReadings(c *fiber.Ctx) error {
	id := c.Params("id")

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -1)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from timestamp"})
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid to timestamp"})
		}
		to = t
	}

	// History depth is bounded regardless of what the client asks for.
	oldest := time.Now().UTC().AddDate(0, 0, -s.cfg.MaxHistoricalDays)
	if from.Before(oldest) {
		from = oldest
	}

	validOnly := c.QueryBool("valid_only", true)
	readings, err := s.svcs.Repos.ReadingsInRange(c.Context(), id, from, to, validOnly, 0)
	if err != nil {
		return internalError(c, err)
	}

	includeMeta := c.QueryBool("metadata", false)
	views := make([]domain.ReadingView, 0, len(readings))
	for i := range readings {
		views = append(views, readings[i].ToAPI(includeMeta))
	}
	return c.JSON(views)
}

func (s *Server) latestReading(c *fiber.Ctx) error {
	rd, err := s.svcs.Readings.Latest(c.Context(), c.Params("buoyID"))
	if err != nil {
		return internalError(c, err)
	}
	if rd == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no readings for buoy"})
	}
	return c.JSON(rd.ToAPI(true))
}

func (s *Server) activeAlerts(c *fiber.Ctx) error {
	alerts, err := s.svcs.Alerts.Active(c.Context(), c.Query("buoy_id"))
	if err != nil {
		return internalError(c, err)
	}
	views := make([]domain.AlertView, 0, len(alerts))
	for i := range alerts {
		views = append(views, alerts[i].ToAPI())
	}
	return c.JSON(views)
}

type alertActionRequest struct {
	UserID string `json:"user_id"`
	Notes  string `json:"notes"`
}

func (s *Server) acknowledgeAlert(c *fiber.Ctx) error {
	var req alertActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	a, err := s.svcs.Alerts.Acknowledge(c.Context(), c.Params("id"), req.UserID, req.Notes)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(a.ToAPI())
}

func (s *Server) resolveAlert(c *fiber.Ctx) error {
	var req alertActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	a, err := s.svcs.Alerts.Resolve(c.Context(), c.Params("id"), req.Notes)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(a.ToAPI())
}

func (s *Server) cancelAlert(c *fiber.Ctx) error {
	var req alertActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	a, err := s.svcs.Alerts.Cancel(c.Context(), c.Params("id"), req.Notes)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(a.ToAPI())
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// pingCache is split out so health can bound how long a dead Redis stalls
// the check.
func (s *Server) pingCache(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()
	return s.cache.Ping(ctx)
}
