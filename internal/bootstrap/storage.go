// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/AccelByte/extend-prize-engine/internal/config"
	"github.com/AccelByte/extend-prize-engine/pkg/campaign"
	"github.com/AccelByte/extend-prize-engine/pkg/catalog"
	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/AccelByte/extend-prize-engine/pkg/store"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Storage is the persistence side of an engine.
type Storage struct {
	Store   prize.Store
	Catalog prize.Catalog
	Health  *store.HealthChecker

	closers []func() error
}

// Close releases what InitStorage opened.
func (s *Storage) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// InitStorage selects the store and catalog backends. redisClient must be
// non-nil when the Redis store is selected; it also enables the catalog cache.
func InitStorage(
	ctx context.Context,
	cfg *config.Config,
	campaignConfig *campaign.Config,
	redisClient redis.UniversalClient,
) (*Storage, error) {
	s := &Storage{}

	switch cfg.StoreBackend {
	case config.StoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis store selected without a redis client")
		}
		s.Store = store.NewRedisStore(redisClient, campaignConfig.CampaignID)
		s.Health = store.NewHealthChecker(store.RedisPinger{Client: redisClient})
	default:
		s.Store = prize.NewMemoryStore()
		s.Health = store.NewHealthChecker(nil)
	}
	logrus.Infof("using %s store", cfg.StoreBackend)

	entries, err := campaignConfig.CatalogEntries()
	if err != nil {
		return nil, err
	}

	switch cfg.CatalogBackend {
	case config.CatalogSQLite:
		sqlCatalog, err := catalog.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, sqlCatalog.Close)

		n, err := sqlCatalog.UpsertAll(ctx, entries)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		logrus.Infof("seeded %d prizes into %s", n, cfg.SQLitePath)
		s.Catalog = sqlCatalog
	default:
		s.Catalog = catalog.NewStaticCatalog(entries...)
	}

	if redisClient != nil && cfg.CatalogCacheTTL > 0 {
		s.Catalog = catalog.NewCachedCatalog(s.Catalog, redisClient, cfg.CatalogCacheTTL)
		logrus.Infof("catalog lookups cached in Redis for %v", cfg.CatalogCacheTTL.Round(time.Second))
	}

	ids := make([]string, 0, len(campaignConfig.Prizes))
	for _, p := range campaignConfig.Prizes {
		ids = append(ids, p.PrizeID)
	}
	missing, err := catalog.Missing(ctx, s.Catalog, ids)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to verify catalog: %w", err)
	}
	if len(missing) > 0 {
		s.Close()
		return nil, fmt.Errorf("prizes missing from catalog: %v", missing)
	}

	return s, nil
}
