package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
	"github.com/pathfinder-hq/pathfinder-backend/internal/utils"
)

const catalogCacheKey = "pathfinder:catalog:v1"

// CatalogCache keeps the full competency list in redis. The catalog is
// read-mostly reference data, so one key with a reseed-time invalidation is
// all the cache management it needs.
type CatalogCache interface {
	Get(ctx context.Context) ([]*types.Competency, bool)
	Set(ctx context.Context, competencies []*types.Competency)
	Invalidate(ctx context.Context)
}

type redisCatalogCache struct {
	log    *logger.Logger
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalogCache(log *logger.Logger) CatalogCache {
	serviceLog := log.With("service", "RedisCatalogCache")
	addr := utils.GetEnv("REDIS_ADDR", "localhost:6379", log)
	password := utils.GetEnv("REDIS_PASSWORD", "", log)
	db := utils.GetEnvAsInt("REDIS_DB", 0, log)
	ttlHours := utils.GetEnvAsInt("CATALOG_CACHE_TTL_HOURS", 12, log)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCatalogCache{
		log:    serviceLog,
		client: client,
		ttl:    time.Duration(ttlHours) * time.Hour,
	}
}

func (c *redisCatalogCache) Get(ctx context.Context) ([]*types.Competency, bool) {
	raw, err := c.client.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Catalog cache read failed", "error", err)
		}
		return nil, false
	}
	var competencies []*types.Competency
	if err := json.Unmarshal(raw, &competencies); err != nil {
		c.log.Warn("Catalog cache entry is corrupt, dropping it", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return competencies, true
}

func (c *redisCatalogCache) Set(ctx context.Context, competencies []*types.Competency) {
	raw, err := json.Marshal(competencies)
	if err != nil {
		c.log.Warn("Catalog cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, catalogCacheKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Catalog cache write failed", "error", err)
	}
}

func (c *redisCatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, catalogCacheKey).Err(); err != nil {
		c.log.Warn("Catalog cache invalidation failed", "error", err)
	}
}
