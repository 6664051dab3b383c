package storage

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/atomdocs/internal/model"
)

const siteCacheKey = "site"

// WrapCache puts an expirable LRU in front of store. Reads are served from
// the cache until ttl passes; a successful write replaces the cached value.
func WrapCache(store Store, size int, ttl time.Duration) Store {
	if store == nil || ttl <= 0 {
		return store
	}
	if size <= 0 {
		size = 1
	}
	return &cachedStore{
		next:  store,
		cache: expirable.NewLRU[string, *model.SiteData](size, nil, ttl),
	}
}

type cachedStore struct {
	next  Store
	cache *expirable.LRU[string, *model.SiteData]
}

func (c *cachedStore) Type() string {
	return c.next.Type()
}

func (c *cachedStore) Read(ctx context.Context) (*model.SiteData, error) {
	if cached, ok := c.cache.Get(siteCacheKey); ok {
		logutil.GetLogger(ctx).Debug("site data cache hit", zap.String("store", c.next.Type()))
		return cached.Clone(), nil
	}
	data, err := c.next.Read(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(siteCacheKey, data.Clone())
	return data, nil
}

func (c *cachedStore) Write(ctx context.Context, data *model.SiteData) error {
	if err := c.next.Write(ctx, data); err != nil {
		c.cache.Remove(siteCacheKey)
		return err
	}
	c.cache.Add(siteCacheKey, data.Clone().Normalize())
	return nil
}

func (c *cachedStore) Close() error {
	c.cache.Purge()
	return c.next.Close()
}
