package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/internal/common/logger"
	"fundingos-workers/internal/common/metrics"
	"fundingos-workers/internal/models"
)

// CachedRecords puts a redis cache-aside layer in front of a RecordStore.
// Cache failures are logged and never surface to the caller.
type CachedRecords struct {
	next   RecordStore
	redis  redis.Cmdable
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewCachedRecords(next RecordStore, rdb redis.Cmdable, ttl time.Duration, prefix string, log logger.Logger) *CachedRecords {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if prefix == "" {
		prefix = "fundingos"
	}
	return &CachedRecords{next: next, redis: rdb, ttl: ttl, prefix: prefix, logger: log}
}

func (c *CachedRecords) Opportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	var out models.Opportunity
	err := c.fetch(ctx, "opportunity", id, &out, func() (interface{}, error) {
		return c.next.Opportunity(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CachedRecords) Project(ctx context.Context, id string) (*models.Project, error) {
	var out models.Project
	err := c.fetch(ctx, "project", id, &out, func() (interface{}, error) {
		return c.next.Project(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CachedRecords) Organization(ctx context.Context, id string) (*models.OrganizationProfile, error) {
	var out models.OrganizationProfile
	err := c.fetch(ctx, "organization", id, &out, func() (interface{}, error) {
		return c.next.Organization(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Invalidate drops a cached record, e.g. after the record changed upstream.
func (c *CachedRecords) Invalidate(ctx context.Context, kind, id string) error {
	if err := c.redis.Del(ctx, c.key(kind, id)).Err(); err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	return nil
}

func (c *CachedRecords) key(kind, id string) string {
	return c.prefix + ":" + kind + ":" + id
}

// fetch decodes a cached value into dst, or loads it and stores it.
func (c *CachedRecords) fetch(ctx context.Context, kind, id string, dst interface{}, load func() (interface{}, error)) error {
	key := c.key(kind, id)

	val, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(val, dst); jsonErr == nil {
			metrics.CacheRequests.WithLabelValues(kind, "hit").Inc()
			return nil
		}
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
		metrics.CacheRequests.WithLabelValues(kind, "corrupt").Inc()
	case stderrors.Is(err, redis.Nil):
		metrics.CacheRequests.WithLabelValues(kind, "miss").Inc()
	default:
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
		metrics.CacheRequests.WithLabelValues(kind, "error").Inc()
	}

	record, err := load()
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.NewInternalError(err)
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
	return nil
}
