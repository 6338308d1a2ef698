// Package redis implements the question cache port on top of Redis.
package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// QuestionCache stores generated question sets under a TTL so repeated
// setups for the same role/level/count do not burn model quota.
type QuestionCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// New constructs a QuestionCache from a Redis URL (redis://...).
func New(redisURL string, ttl time.Duration) (*QuestionCache, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("op=cache.parse_url: %w", err)
	}
	return &QuestionCache{client: goredis.NewClient(opts), ttl: ttl}, nil
}

// NewWithClient wraps an existing client; used by tests with miniredis.
func NewWithClient(client *goredis.Client, ttl time.Duration) *QuestionCache {
	return &QuestionCache{client: client, ttl: ttl}
}

// Get returns the cached question set for key, or domain.ErrNotFound on a
// miss. A corrupt entry is treated as a miss.
func (c *QuestionCache) Get(ctx domain.Context, key string) ([]string, error) {
	val, err := c.client.Get(ctx, cacheKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("op=cache.get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("op=cache.get: %w", err)
	}
	var qs []string
	if err := json.Unmarshal([]byte(val), &qs); err != nil {
		return nil, fmt.Errorf("op=cache.get: %w", domain.ErrNotFound)
	}
	return qs, nil
}

// Set stores a question set under key with the configured TTL.
func (c *QuestionCache) Set(ctx domain.Context, key string, questions []string) error {
	b, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("op=cache.set: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(key), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("op=cache.set: %w", err)
	}
	return nil
}

// Ping reports Redis connectivity; used by the readiness endpoint.
func (c *QuestionCache) Ping(ctx domain.Context) error {
	return c.client.Ping(ctx).Err()
}

func cacheKey(key string) string { return "questions:" + key }
