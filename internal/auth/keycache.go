package auth

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/vision-assist/internal/models"
)

const (
	keyCacheTTL    = 5 * time.Minute
	keyCachePrefix = "apikey:"
)

// Validator resolves an API key to the identity it belongs to.
type Validator interface {
	ValidateAPIKey(ctx context.Context, key string) (*models.Identity, error)
}

// cacheClient is the subset of redis commands the cache uses. *redis.Client
// satisfies it; tests use an in-memory fake.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedValidator wraps a Validator with a Redis lookaside cache so the hot
// path of every protected request doesn't hit MongoDB. Cache problems never
// fail a request; they just fall through to the inner validator.
type CachedValidator struct {
	inner Validator
	rdb   cacheClient
}

func NewCachedValidator(inner Validator, rdb cacheClient) *CachedValidator {
	return &CachedValidator{inner: inner, rdb: rdb}
}

func (c *CachedValidator) ValidateAPIKey(ctx context.Context, key string) (*models.Identity, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	val, err := c.rdb.Get(ctx, keyCachePrefix+key).Result()
	if err == nil {
		var id models.Identity
		if json.Unmarshal([]byte(val), &id) == nil {
			return &id, nil
		}
	} else if err != redis.Nil {
		log.Printf("apikey cache get error: %v", err)
	}

	id, err := c.inner.ValidateAPIKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(id); err == nil {
		if err := c.rdb.Set(ctx, keyCachePrefix+key, data, keyCacheTTL).Err(); err != nil {
			log.Printf("apikey cache set error: %v", err)
		}
	}
	return id, nil
}

// Invalidate drops the cache entry for a key, used after account updates and
// deletes so a stale identity doesn't outlive the record.
func (c *CachedValidator) Invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, keyCachePrefix+key).Err(); err != nil {
		log.Printf("apikey cache invalidate error: %v", err)
	}
}
