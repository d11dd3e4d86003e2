package quote

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedClient decorates a Client with a redis read-through cache. Cache
// failures degrade to the inner client; they never fail a fetch.
type CachedClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

func (c *CachedClient) Fetch(ctx context.Context, symbol string) (*Quote, error) {
	key := cacheKey(symbol)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var q Quote
		if err := json.Unmarshal(raw, &q); err == nil {
			return &q, nil
		}
		zap.S().Debugf("drop malformed cached quote for %s", symbol)
	} else if err != redis.Nil {
		zap.S().Debugf("quote cache get %s fail: %+v", symbol, err)
	}

	q, err := c.inner.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(q); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			zap.S().Debugf("quote cache set %s fail: %+v", symbol, err)
		}
	}

	return q, nil
}

func cacheKey(symbol string) string {
	return "quote:" + NormalizeSymbol(symbol)
}
