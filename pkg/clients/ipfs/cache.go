package ipfs

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type cacheMiddleware struct {
	cache *expirable.LRU[string, string]
	svc   Client
}

func (c *cacheMiddleware) Put(ctx context.Context, fileName string, data []byte) (string, error) {
	key, err := LocalCID(data)
	if err != nil || len(data) == 0 {
		return c.svc.Put(ctx, fileName, data)
	}

	if cached, found := c.cache.Get(key); found {
		return cached, nil
	}

	resp, err := c.svc.Put(ctx, fileName, data)
	if err != nil {
		return "", err
	}

	c.cache.Add(key, resp)

	return resp, nil
}

func (c *cacheMiddleware) Get(ctx context.Context, contentID string) ([]byte, error) {
	return c.svc.Get(ctx, contentID)
}

func NewCacheMiddleware(svc Client, size int, ttl time.Duration) Client {
	return &cacheMiddleware{
		cache: expirable.NewLRU[string, string](size, nil, ttl),
		svc:   svc,
	}
}
