package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buoywatch/backend/internal/config"
	"github.com/buoywatch/backend/internal/domain"
)

// ErrMiss is returned when a key is absent; callers fall through to the
// database.
var ErrMiss = errors.New("cache miss")

// Client wraps Redis with the TTL policy from configuration.
type Client struct {
	rdb              *redis.Client
	latestReadingTTL time.Duration
	buoyMetadataTTL  time.Duration
	alertStatesTTL   time.Duration
}

// New parses REDIS_URL and builds a pooled client. The connection is not
// probed here; startup calls Ping explicitly so a dead Redis fails fast.
func New(cfg *config.Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.RedisMaxConnections

	return &Client{
		rdb:              redis.NewClient(opts),
		latestReadingTTL: time.Duration(cfg.CacheLatestReadingTTL) * time.Second,
		buoyMetadataTTL:  time.Duration(cfg.CacheBuoyMetadataTTL) * time.Second,
		alertStatesTTL:   time.Duration(cfg.CacheAlertStatesTTL) * time.Second,
	}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func latestReadingKey(buoyID string) string { return "reading:latest:" + buoyID }

func buoyMetadataKey(buoyID string) string { return "buoy:meta:" + buoyID }

// SetLatestReading caches the newest sample for a station.
func (c *Client) SetLatestReading(ctx context.Context, rd *domain.Reading) error {
	payload, err := json.Marshal(rd)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, latestReadingKey(rd.BuoyID), payload, c.latestReadingTTL).Err()
}

func (c *Client) GetLatestReading(ctx context.Context, buoyID string) (*domain.Reading, error) {
	raw, err := c.rdb.Get(ctx, latestReadingKey(buoyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var rd domain.Reading
	if err := json.Unmarshal(raw, &rd); err != nil {
		return nil, err
	}
	return &rd, nil
}

func (c *Client) SetBuoyMetadata(ctx context.Context, b *domain.Buoy) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, buoyMetadataKey(b.ID), payload, c.buoyMetadataTTL).Err()
}

func (c *Client) GetBuoyMetadata(ctx context.Context, buoyID string) (*domain.Buoy, error) {
	raw, err := c.rdb.Get(ctx, buoyMetadataKey(buoyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var b domain.Buoy
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// InvalidateBuoy drops both cached entries for a station.
func (c *Client) InvalidateBuoy(ctx context.Context, buoyID string) error {
	return c.rdb.Del(ctx, latestReadingKey(buoyID), buoyMetadataKey(buoyID)).Err()
}
