package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is used when the configured TTL is not positive
const DefaultCacheTTL = 5 * time.Minute

// ReportCache stores generated reports by request key
type ReportCache interface {
	// Get returns the cached report, nil without error on a miss
	Get(ctx context.Context, key string) (*Report, error)
	Set(ctx context.Context, key string, report *Report) error
}

// NewRedisReportCache creates a report cache on a Redis client
// #DATA_ASSUMPTION: Reports may lag behind writes by up to ttl, nothing invalidates them early
func NewRedisReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &redisReportCache{client: client, ttl: ttl}
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisReportCache) key(key string) string {
	return fmt.Sprintf("evaluation:report:%s", key)
}

func (c *redisReportCache) Get(ctx context.Context, key string) (*Report, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *redisReportCache) Set(ctx context.Context, key string, report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

// NewNoopReportCache creates a cache that never stores anything
func NewNoopReportCache() ReportCache {
	return noopReportCache{}
}

type noopReportCache struct{}

func (noopReportCache) Get(context.Context, string) (*Report, error) { return nil, nil }

func (noopReportCache) Set(context.Context, string, *Report) error { return nil }
