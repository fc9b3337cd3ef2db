package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache provides typed caching utilities on top of the Redis client.
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	data, err := c.client.Redis().Get(ctx, fullKey).Bytes()
	if err != nil {
		// Key not found is not an error
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Set(ctx, fullKey, data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Del(ctx, fullKey).Err()
}

// SetNX sets a key only if it does not exist. Used as a fast-path
// duplicate guard for notification emission; the store's unique upsert
// remains the source of truth.
func (c *Cache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if !c.client.Enabled() {
		// Without Redis the store-level dedup alone decides
		return true, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache marshal failed: %w", err)
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().SetNX(ctx, fullKey, data, ttl).Result()
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // live dashboard widgets
	TTLMedium = 10 * time.Minute // attainment summaries
	TTLDaily  = 24 * time.Hour   // daily tick dedup keys, WoW scan results
)

// Common cache key generators

func KpiSummaryKey(kpiID string) string {
	return fmt.Sprintf("kpi:summary:%s", kpiID)
}

func WowSignalsKey(campaignID string, day string) string {
	return fmt.Sprintf("signals:wow:%s:%s", campaignID, day)
}

func NotificationDedupKey(kpiID string, day string, notifType string) string {
	return fmt.Sprintf("notify:dedup:%s:%s:%s", kpiID, day, notifType)
}
