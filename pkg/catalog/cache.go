// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultCacheTTL is how long a resolved prize stays cached.
	DefaultCacheTTL = 5 * time.Minute
	cacheKeyPrefix  = "prize_engine:catalog:"
)

// CachedCatalog fronts another catalog with a Redis read-through cache.
// Cache failures are logged and the inner catalog is used directly.
type CachedCatalog struct {
	inner  prize.Catalog
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCachedCatalog wraps inner. A zero ttl uses DefaultCacheTTL.
func NewCachedCatalog(inner prize.Catalog, client redis.UniversalClient, ttl time.Duration) *CachedCatalog {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedCatalog{inner: inner, client: client, ttl: ttl}
}

// Lookup implements prize.Catalog.
func (c *CachedCatalog) Lookup(ctx context.Context, prizeID string) (prize.Prize, error) {
	key := cacheKeyPrefix + prizeID

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var p prize.Prize
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		logrus.Warnf("dropping malformed cached prize %s", prizeID)
	} else if err != redis.Nil {
		logrus.Warnf("catalog cache read failed for %s: %v", prizeID, err)
	}

	p, err := c.inner.Lookup(ctx, prizeID)
	if err != nil {
		return prize.Prize{}, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logrus.Warnf("catalog cache write failed for %s: %v", prizeID, err)
		}
	}
	return p, nil
}

// Invalidate drops a cached prize, e.g. after an upsert.
func (c *CachedCatalog) Invalidate(ctx context.Context, prizeID string) error {
	return c.client.Del(ctx, cacheKeyPrefix+prizeID).Err()
}
