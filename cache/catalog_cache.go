package cache

import (
	"context"
	"time"

	"tunedeck/logger"

	"github.com/go-redis/redis/v8"
)

// Cache keys for the catalog listings. The reader service populates these;
// this service only evicts them when the backing collection changes.
const (
	AlbumsKey = "albums"
	SongsKey  = "songs"
)

// CatalogCache evicts catalog listing entries. Eviction is a best-effort side
// channel: every failure mode is logged and absorbed, none reaches the caller.
type CatalogCache struct {
	client *redis.Client
}

// NewCatalogCache wraps a Redis client. A nil client is allowed and turns
// every call into a logged no-op.
func NewCatalogCache(client *redis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

// Ready reports whether the cache answers a PING. Advisory only; Invalidate
// is safe to call regardless of what Ready returned.
func (c *CatalogCache) Ready(ctx context.Context) bool {
	if c.client == nil {
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return c.client.Ping(pingCtx).Err() == nil
}

// Invalidate deletes the listing under key. Deleting an absent key is a
// successful eviction, so the call is idempotent.
func (c *CatalogCache) Invalidate(ctx context.Context, key string) {
	if c.client == nil {
		logger.Warn("cache invalidation skipped, no client", logger.String("key", key))
		return
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Warn("cache invalidation failed",
			logger.String("key", key),
			logger.ErrorField(err))
		return
	}

	logger.Info("cache invalidated", logger.String("key", key))
}
