package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hackathon/internal/cache"
)

// Cache is the part of cache.Client the account services use.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// orNoCache turns a nil Cache into the nil *cache.Client, which misses on every read.
func orNoCache(c Cache) Cache {
	if c == nil {
		return (*cache.Client)(nil)
	}
	return c
}

func userCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("hackathon:user:%s", id)
}
