// Package cache keeps recently fetched postings in Redis so repeated scrape
// runs inside the TTL skip the network.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/marketbrief/internal/model"
)

// Cache is a Redis-backed store of normalized postings keyed by company.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at redisURL (redis://host:6379/0).
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Get returns the cached postings for a board. A miss returns false with a
// nil error.
func (c *Cache) Get(ctx context.Context, ats model.Platform, companyID string) ([]model.NormalizedPosting, bool, error) {
	data, err := c.client.Get(ctx, Key(ats, companyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get: %w", err)
	}
	var postings []model.NormalizedPosting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, false, fmt.Errorf("cache: decode: %w", err)
	}
	return postings, true, nil
}

// Set stores postings with the configured TTL.
func (c *Cache) Set(ctx context.Context, ats model.Platform, companyID string, postings []model.NormalizedPosting) error {
	data, err := json.Marshal(postings)
	if err != nil {
		return fmt.Errorf("cache: marshal: %w", err)
	}
	return c.client.Set(ctx, Key(ats, companyID), data, c.ttl).Err()
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Key builds the Redis key for a board.
func Key(ats model.Platform, companyID string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(companyID)))
	return fmt.Sprintf("marketbrief:%s:%x", ats, hash[:8])
}
