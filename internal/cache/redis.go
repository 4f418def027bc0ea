// Package cache provides the TTL'd read-through layer for served pages.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

// KeyPrefix namespaces every cache key this service writes.
const KeyPrefix = "linkedin_insights:"

// Key builds a namespaced cache key, e.g. Key("page", "acme") ->
// "linkedin_insights:page:acme".
func Key(kind, id string) string {
	return fmt.Sprintf("%s%s:%s", KeyPrefix, kind, id)
}

// Redis implements insights.Cache on top of a Redis server. Values are
// stored as JSON.
type Redis struct {
	client *redis.Client
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedis connects to the Redis URL (redis://host:port/db) and pings
// it to verify the server is reachable.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// Get loads a key into dest and reports whether it was present.
func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.misses.Add(1)
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A corrupt entry behaves like a miss so the caller refills it.
		r.misses.Add(1)
		return false, nil
	}
	r.hits.Add(1)
	return true, nil
}

// Set stores value under key for ttl.
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a single key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// DeletePattern removes all keys matching the glob pattern and returns
// how many were deleted. SCAN keeps this safe on shared servers.
func (r *Redis) DeletePattern(ctx context.Context, pattern string) (int, error) {
	var deleted int
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("redis del %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	return deleted, nil
}

// Stats reports backend identity and hit counters. Entries counts keys
// under this service's namespace.
func (r *Redis) Stats(ctx context.Context) (insights.CacheStats, error) {
	stats := insights.CacheStats{
		Backend: "redis",
		Enabled: true,
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
	}
	iter := r.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		stats.Entries++
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("redis scan: %w", err)
	}
	return stats, nil
}

// Close releases the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
