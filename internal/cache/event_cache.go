package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/eventhub/internal/domain"
)

const eventKeyPrefix = "eventhub:event:"

// EventCache is a redis read-through cache for public event projections.
// Misses and redis failures are equivalent; the store stays authoritative.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewEventCache creates the cache.
func NewEventCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *EventCache {
	return &EventCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached event or (nil, false).
func (c *EventCache) Get(ctx context.Context, id string) (*domain.Event, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, eventKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("event cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var event domain.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, false
	}
	return &event, true
}

// Set stores the event projection with the configured TTL.
func (c *EventCache) Set(ctx context.Context, event *domain.Event) {
	if c == nil || c.client == nil || event == nil {
		return
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, eventKeyPrefix+event.ID, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("event cache set failed", zap.Error(err))
	}
}

// Invalidate drops the cached projection after a mutation.
func (c *EventCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, eventKeyPrefix+id).Err(); err != nil {
		c.logger.Debug("event cache invalidate failed", zap.Error(err))
	}
}
