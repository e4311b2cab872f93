package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sekretariat-digital/bukutamu/internal/models"
)

const checkCachePrefix = "guestcheck:%s:%s"

// RedisDeviceCheckCache memoizes positive check-device answers with a TTL.
// Only "has submitted" is cached; a cache miss always falls through to the
// database so the cache can never report a stale "not submitted."
type RedisDeviceCheckCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeviceCheckCache(client *redis.Client, ttl time.Duration) *RedisDeviceCheckCache {
	return &RedisDeviceCheckCache{client: client, ttl: ttl}
}

func (c *RedisDeviceCheckCache) Get(ctx context.Context, qrToken, deviceID string) (*models.SubmissionSummary, error) {
	key := fmt.Sprintf(checkCachePrefix, qrToken, deviceID)

	jsonData, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check cache entry: %w", err)
	}

	var summary models.SubmissionSummary
	if err := json.Unmarshal([]byte(jsonData), &summary); err != nil {
		// Corrupt entry: drop it and report a miss
		c.client.Del(ctx, key)
		return nil, ErrNotFound
	}
	return &summary, nil
}

func (c *RedisDeviceCheckCache) Set(ctx context.Context, qrToken, deviceID string, summary *models.SubmissionSummary) error {
	jsonData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal check cache entry: %w", err)
	}

	key := fmt.Sprintf(checkCachePrefix, qrToken, deviceID)
	if err := c.client.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set check cache entry: %w", err)
	}
	return nil
}

func (c *RedisDeviceCheckCache) Invalidate(ctx context.Context, qrToken, deviceID string) error {
	key := fmt.Sprintf(checkCachePrefix, qrToken, deviceID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate check cache entry: %w", err)
	}
	return nil
}
