// Package cache keeps the latest usage snapshots in Redis for cheap
// reads by other tooling.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marzhelp/internal/domain/quota"
	"marzhelp/internal/shared/config"
	apperrors "marzhelp/internal/shared/errors"
)

const snapshotKeyPrefix = "marzhelp:snapshot:"

// SnapshotCache implements quota.SnapshotCache over Redis.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a Redis-backed snapshot cache.
func NewSnapshotCache(cfg *config.RedisConfig, ttl time.Duration) *SnapshotCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &SnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(adminID uint) string {
	return fmt.Sprintf("%s%d", snapshotKeyPrefix, adminID)
}

func (c *SnapshotCache) Put(ctx context.Context, snapshot quota.UsageSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.NewInternalError("failed to encode snapshot", err.Error())
	}
	if err := c.client.Set(ctx, snapshotKey(snapshot.AdminID), payload, c.ttl).Err(); err != nil {
		return apperrors.NewUnavailableError("failed to cache snapshot", err.Error())
	}
	return nil
}

func (c *SnapshotCache) Get(ctx context.Context, adminID uint) (*quota.UsageSnapshot, error) {
	payload, err := c.client.Get(ctx, snapshotKey(adminID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.NewUnavailableError("failed to read cached snapshot", err.Error())
	}
	var snapshot quota.UsageSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, apperrors.NewInternalError("failed to decode cached snapshot", err.Error())
	}
	return &snapshot, nil
}

// Close releases the underlying Redis connection.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}
