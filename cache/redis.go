// Package cache provides an optional Redis layer in front of the
// island and direct-route lookups used while building raw schedules.
// Every cache failure degrades to the underlying store.
package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atollhop/ops-api/schedule"
)

const keyPrefix = "atollhop:"

// IslandKey is the cache key for an island-id lookup.
func IslandKey(name string) string {
	return keyPrefix + "island:" + strings.ToLower(strings.TrimSpace(name))
}

// RouteKey is the cache key for a direct-route lookup.
func RouteKey(origin, destination string) string {
	return keyPrefix + "route:" +
		strings.ToLower(strings.TrimSpace(origin)) + ":" +
		strings.ToLower(strings.TrimSpace(destination))
}

// LookupCache caches positive lookup results. Misses (nil ids) are not
// cached, so newly created islands and routes become visible as soon as
// they exist.
type LookupCache struct {
	client *redis.Client
	next   schedule.Lookups
	ttl    time.Duration
}

// NewLookupCache connects to Redis and wraps next with a read-through
// cache.
func NewLookupCache(addr, password string, db int, ttl time.Duration, next schedule.Lookups) (*LookupCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &LookupCache{client: client, next: next, ttl: ttl}, nil
}

// Close releases the Redis connection.
func (c *LookupCache) Close() error {
	return c.client.Close()
}

// FindIslandID implements schedule.Lookups.
func (c *LookupCache) FindIslandID(ctx context.Context, name string) (*int64, error) {
	if id, ok := c.get(ctx, IslandKey(name)); ok {
		return &id, nil
	}
	id, err := c.next.FindIslandID(ctx, name)
	if err == nil && id != nil {
		c.set(ctx, IslandKey(name), *id)
	}
	return id, err
}

// FindDirectRouteID implements schedule.Lookups.
func (c *LookupCache) FindDirectRouteID(ctx context.Context, origin, destination string) (*int64, error) {
	if id, ok := c.get(ctx, RouteKey(origin, destination)); ok {
		return &id, nil
	}
	id, err := c.next.FindDirectRouteID(ctx, origin, destination)
	if err == nil && id != nil {
		c.set(ctx, RouteKey(origin, destination), *id)
	}
	return id, err
}

func (c *LookupCache) get(ctx context.Context, key string) (int64, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		log.Printf("cache get failed for %s: %v", key, err)
		return 0, false
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		log.Printf("cache value for %s is not an id: %v", key, err)
		return 0, false
	}
	return id, true
}

func (c *LookupCache) set(ctx context.Context, key string, id int64) {
	if err := c.client.Set(ctx, key, strconv.FormatInt(id, 10), c.ttl).Err(); err != nil {
		log.Printf("cache set failed for %s: %v", key, err)
	}
}
