package redis

import (
	"context"
	"fmt"

	breaker "github.com/donnigundala/dg-breaker"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a new Redis client and verifies connectivity with a
// single Ping before returning, so construction fails fast rather than on
// the first call. config.URL takes precedence over Host/Port when set,
// matching spec.md §4.3's "connection-handle | connection-url, mutually
// exclusive" contract (DecodeConfig already enforces at least one is given).
// Both failure paths wrap via breaker.NewBackendError, the same taxonomy
// every other backend failure in this driver funnels through, so a caller
// constructing NewDriver/NewRedisBreaker against a down or misconfigured
// endpoint still gets an error satisfying errors.Is(err, breaker.ErrCircuitBreakerOpen).
func NewClient(config Config) (*redis.Client, error) {
	var opts *redis.Options
	if config.URL != "" {
		parsed, err := redis.ParseURL(config.URL)
		if err != nil {
			return nil, breaker.NewBackendError("redis", fmt.Errorf("invalid url: %w", err))
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
			Password: config.Password,
			DB:       config.Database,
		}
	}

	opts.PoolSize = config.PoolSize
	opts.MinIdleConns = config.MinIdleConns
	opts.MaxRetries = config.MaxRetries
	opts.DialTimeout = config.Timeout
	opts.MinRetryBackoff = config.MinRetryBackoff
	opts.MaxRetryBackoff = config.MaxRetryBackoff

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, breaker.NewBackendError("redis", err)
	}

	return client, nil
}
