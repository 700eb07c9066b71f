package counter

import "github.com/tapglue/multibuy/platform/cache"

type cacheService struct {
	cache *cache.Cache
}

// CacheService returns a Service backed by an expiring in-memory cache.
func CacheService(c *cache.Cache) Service {
	return &cacheService{cache: c}
}

func (s *cacheService) Increment(key string) (uint32, error) {
	return s.cache.Increment(key), nil
}

func (s *cacheService) Get(key string) (uint32, error) {
	return s.cache.Get(key), nil
}

func (s *cacheService) Size() (int, error) {
	return s.cache.Len(), nil
}
