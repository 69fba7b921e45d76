// Package cache provides Redis-backed caches for data that is expensive to
// refetch, currently the router's WAN status.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/helios-home/helios/internal/application/network/dto"
	sharedConfig "github.com/helios-home/helios/internal/shared/config"
)

const networkStatusKey = "helios:network:status"

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg *sharedConfig.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NetworkStatusCache keeps the last WAN status snapshot so that dashboard
// polling does not hammer the router between scan ticks.
type NetworkStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNetworkStatusCache creates a cache whose entries live for ttl, normally
// the device scan delay.
func NewNetworkStatusCache(client *redis.Client, ttl time.Duration) *NetworkStatusCache {
	return &NetworkStatusCache{client: client, ttl: ttl}
}

// Get returns the cached status, or (nil, nil) on a miss.
func (c *NetworkStatusCache) Get(ctx context.Context) (*dto.NetworkStatusDTO, error) {
	data, err := c.client.Get(ctx, networkStatusKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read network status cache: %w", err)
	}

	var status dto.NetworkStatusDTO
	if err := json.Unmarshal(data, &status); err != nil {
		// A stale or corrupted entry is a miss, not a failure.
		return nil, nil
	}
	return &status, nil
}

// Set stores the status snapshot.
func (c *NetworkStatusCache) Set(ctx context.Context, status *dto.NetworkStatusDTO) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal network status: %w", err)
	}
	if err := c.client.Set(ctx, networkStatusKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write network status cache: %w", err)
	}
	return nil
}
