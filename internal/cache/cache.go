package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

// Options selects and configures the cache backend.
type Options struct {
	Enabled  bool
	RedisURL string
}

// New picks a backend: Redis when configured and reachable, the
// in-process memory cache when Redis is down, and a disabled no-op
// when caching is turned off entirely.
func New(ctx context.Context, opts Options, clock insights.Clock, logger *zap.Logger) insights.Cache {
	if !opts.Enabled {
		logger.Info("cache disabled")
		return Disabled{}
	}
	if opts.RedisURL != "" {
		redisCache, err := NewRedis(ctx, opts.RedisURL)
		if err == nil {
			logger.Info("cache backend ready", zap.String("backend", "redis"))
			return redisCache
		}
		logger.Warn("redis unreachable, falling back to memory cache", zap.Error(err))
	}
	logger.Info("cache backend ready", zap.String("backend", "memory"))
	return NewMemory(clock)
}

// Disabled is the no-op cache used when caching is switched off. Every
// read misses and writes vanish.
type Disabled struct{}

// Get always reports a miss.
func (Disabled) Get(context.Context, string, any) (bool, error) { return false, nil }

// Set discards the value.
func (Disabled) Set(context.Context, string, any, time.Duration) error { return nil }

// Delete does nothing.
func (Disabled) Delete(context.Context, string) error { return nil }

// DeletePattern does nothing.
func (Disabled) DeletePattern(context.Context, string) (int, error) { return 0, nil }

// Stats reports the cache as disabled.
func (Disabled) Stats(context.Context) (insights.CacheStats, error) {
	return insights.CacheStats{Backend: "disabled", Enabled: false}, nil
}

// Close does nothing.
func (Disabled) Close() error { return nil }
