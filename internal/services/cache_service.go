package services

import (
	"context"
	"time"

	"pasugo/pkg/cache"
)

// CacheService is the slice of the cache the services actually use.
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	IsNotFound(err error) bool
}

type redisCacheService struct {
	cache *cache.RedisCache
}

func NewCacheService(c *cache.RedisCache) CacheService {
	return &redisCacheService{cache: c}
}

func (s *redisCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.cache.Set(ctx, key, value, expiration)
}

func (s *redisCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.cache.Get(ctx, key, dest)
}

func (s *redisCacheService) Delete(ctx context.Context, keys ...string) error {
	return s.cache.Delete(ctx, keys...)
}

func (s *redisCacheService) IsNotFound(err error) bool {
	return s.cache.IsNotFound(err)
}
