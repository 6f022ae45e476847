package statcache

import (
	"context"

	"github.com/marmos91/dittocifs/internal/logger"
	"github.com/marmos91/dittocifs/internal/telemetry"
	"github.com/marmos91/dittocifs/pkg/trans2"
)

// Client answers Find and Fstat from the cache when it can and from the
// wrapped trans2.Client otherwise. Failures are never cached.
type Client struct {
	cache  *Cache
	client *trans2.Client
}

// NewClient wraps client with cache.
func NewClient(cache *Cache, client *trans2.Client) *Client {
	return &Client{cache: cache, client: client}
}

// Find returns the listing for pattern.
func (c *Client) Find(ctx context.Context, pattern string) ([]trans2.FileRecord, error) {
	key := keyFind(c.client.TreeID(), pattern)

	var records []trans2.FileRecord
	if c.lookup(ctx, KindFind, key, pattern, &records) {
		return records, nil
	}

	records, err := c.client.Find(ctx, pattern)
	if err != nil {
		return nil, err
	}
	c.store(ctx, KindFind, key, pattern, records)
	return records, nil
}

// Fstat returns the metadata of path.
func (c *Client) Fstat(ctx context.Context, path string) (*trans2.FileRecord, error) {
	key := keyStat(c.client.TreeID(), path)

	var rec trans2.FileRecord
	if c.lookup(ctx, KindStat, key, path, &rec) {
		return &rec, nil
	}

	got, err := c.client.Fstat(ctx, path)
	if err != nil {
		return nil, err
	}
	c.store(ctx, KindStat, key, path, got)
	return got, nil
}

// lookup reports a hit. Cache errors are logged and treated as misses.
func (c *Client) lookup(ctx context.Context, kind string, key []byte, target string, out any) bool {
	ctx, span := telemetry.StartCacheSpan(ctx, telemetry.Path(target))
	defer span.End()

	hit, err := c.cache.get(kind, key, out)
	if err != nil {
		logger.WarnCtx(ctx, "stat cache read failed", logger.Path(target), logger.Err(err))
		hit = false
	}
	telemetry.SetAttributes(ctx, telemetry.CacheHit(hit))
	return hit
}

func (c *Client) store(ctx context.Context, kind string, key []byte, target string, v any) {
	if err := c.cache.put(kind, key, v); err != nil {
		logger.WarnCtx(ctx, "stat cache write failed", logger.Path(target), logger.Err(err))
	}
}
