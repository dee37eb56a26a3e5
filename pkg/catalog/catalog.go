// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"
)

// StaticCatalog is an in-memory catalog, typically loaded from the campaign file.
type StaticCatalog struct {
	mu     sync.RWMutex
	prizes map[string]prize.Prize
}

// NewStaticCatalog creates a catalog holding the given prizes.
func NewStaticCatalog(prizes ...prize.Prize) *StaticCatalog {
	c := &StaticCatalog{prizes: make(map[string]prize.Prize, len(prizes))}
	for _, p := range prizes {
		c.prizes[p.ID] = p
	}
	return c
}

// Lookup implements prize.Catalog.
func (c *StaticCatalog) Lookup(ctx context.Context, prizeID string) (prize.Prize, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.prizes[prizeID]
	if !ok {
		return prize.Prize{}, prize.ErrPrizeNotFound
	}
	return p, nil
}

// Upsert adds or replaces a prize.
func (c *StaticCatalog) Upsert(ctx context.Context, p prize.Prize) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prizes[p.ID] = p
	return nil
}

// Missing returns the ids from ids that the catalog cannot resolve.
func Missing(ctx context.Context, c prize.Catalog, ids []string) ([]string, error) {
	var missing []string
	for _, id := range ids {
		_, err := c.Lookup(ctx, id)
		if errors.Is(err, prize.ErrPrizeNotFound) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return missing, nil
}
