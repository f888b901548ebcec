package serverutils

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheStorage adapts go-cache to fiber.Storage so the rate limiter keeps its
// counters in an expiring in-process map.
type CacheStorage struct {
	cache *cache.Cache
}

func NewCacheStorage(cleanupInterval time.Duration) *CacheStorage {
	return &CacheStorage{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (s *CacheStorage) Get(key string) ([]byte, error) {
	if v, ok := s.cache.Get(key); ok {
		return v.([]byte), nil
	}
	return nil, nil
}

func (s *CacheStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	if exp <= 0 {
		exp = cache.NoExpiration
	}
	// fiber reuses its buffers
	stored := make([]byte, len(val))
	copy(stored, val)
	s.cache.Set(key, stored, exp)
	return nil
}

func (s *CacheStorage) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *CacheStorage) Reset() error {
	s.cache.Flush()
	return nil
}

func (s *CacheStorage) Close() error {
	return nil
}
