// Package redisq caches generated interview questions in Redis so repeated
// requests for the same candidate skip the LLM call, surviving process
// restarts and spanning runs.
package redisq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

const keyPrefix = "questions:"

// Cache implements domain.QuestionCache on Redis.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New dials Redis from a URL (redis://host:port/db).
func New(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewWithClient(redis.NewClient(opts), ttl), nil
}

// NewWithClient wraps an existing client; used by tests with miniredis.
func NewWithClient(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key derives a stable cache key from the fields that identify a candidate
// across runs, so re-uploading the same CSV reuses cached questions even
// though run-scoped ids reset.
func Key(sc domain.ScoredCandidate) string {
	h := sha256.Sum256([]byte(strings.Join([]string{sc.Name, sc.Title, sc.Company, sc.BioSummary}, "\x00")))
	return keyPrefix + hex.EncodeToString(h[:])
}

// Get returns the cached questions, or (nil, nil) on a miss. Corrupt entries
// count as misses so a bad write can never wedge question generation.
func (c *Cache) Get(ctx context.Context, sc domain.ScoredCandidate) ([]string, error) {
	key := Key(sc)
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("questions cache get: %w", err)
	}
	var qs []string
	if err := json.Unmarshal([]byte(val), &qs); err != nil {
		slog.Warn("dropping corrupt questions cache entry", slog.String("key", key), slog.Any("error", err))
		return nil, nil
	}
	return qs, nil
}

// Set stores questions against the candidate's content key with the
// configured TTL.
func (c *Cache) Set(ctx context.Context, sc domain.ScoredCandidate, questions []string) error {
	b, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("questions cache marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(sc), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("questions cache set: %w", err)
	}
	return nil
}

// Ping reports Redis reachability for readiness checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
