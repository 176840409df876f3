package attention

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"beacon/internal/engine"
	"beacon/internal/logger"
)

const snapshotKey = "beacon:attention:snapshot"

// SnapshotCache keeps the last full evaluation in Redis so dashboard reads
// between refreshes do not hit Postgres at all. It is strictly best effort:
// every Redis failure degrades to a cache miss.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration, log logger.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SnapshotCache{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (c *SnapshotCache) Get(ctx context.Context) ([]engine.ActionItem, bool) {
	data, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnwCtx(ctx, "Snapshot cache read failed", "error", err)
		}
		return nil, false
	}

	var items []engine.ActionItem
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.WarnwCtx(ctx, "Snapshot cache held malformed data", "error", err)
		return nil, false
	}
	return items, true
}

func (c *SnapshotCache) Set(ctx context.Context, items []engine.ActionItem) {
	data, err := json.Marshal(items)
	if err != nil {
		c.logger.WarnwCtx(ctx, "Failed to encode snapshot", "error", err)
		return
	}
	if err := c.client.Set(ctx, snapshotKey, data, c.ttl).Err(); err != nil {
		c.logger.WarnwCtx(ctx, "Snapshot cache write failed", "error", err)
	}
}

func (c *SnapshotCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, snapshotKey).Err(); err != nil {
		c.logger.WarnwCtx(ctx, "Snapshot cache invalidation failed", "error", err)
	}
}
