// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scriptedRandom replays values in order and repeats the last one.
type scriptedRandom struct {
	mu     sync.Mutex
	values []float64
	next   int
}

func newScriptedRandom(values ...float64) *scriptedRandom {
	return &scriptedRandom{values: values}
}

func (r *scriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.values) == 0 {
		return 0
	}
	if r.next >= len(r.values) {
		return r.values[len(r.values)-1]
	}
	v := r.values[r.next]
	r.next++
	return v
}

// mapCatalog resolves every known prize id to a generated display shape.
type mapCatalog map[string]Prize

func (c mapCatalog) Lookup(ctx context.Context, prizeID string) (Prize, error) {
	p, ok := c[prizeID]
	if !ok {
		return Prize{}, ErrPrizeNotFound
	}
	return p, nil
}

func catalogFor(ids ...string) mapCatalog {
	c := make(mapCatalog, len(ids))
	for _, id := range ids {
		c[id] = Prize{ID: id, Name: "Prize " + id, Value: decimal.NewFromInt(10)}
	}
	return c
}

// failingStore fails attempt recording.
type failingStore struct{ *MemoryStore }

var errStoreDown = errors.New("connection refused")

func (f *failingStore) RecordAttempt(ctx context.Context, s UserSession, at time.Time) (UserSession, error) {
	return UserSession{}, errStoreDown
}

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testSession(id string) UserSession {
	return UserSession{
		SessionID:         id,
		IPAddress:         "10.0.0.1",
		UserAgent:         "test-agent",
		DeviceFingerprint: "fp-" + id,
	}
}

func newTestEngine(cfg EngineConfig, clock Clock, random RandomSource, extraPrizes ...string) (*Engine, *MemoryStore, error) {
	store := NewMemoryStore()
	ids := make([]string, 0, len(cfg.Prizes)+len(extraPrizes))
	for _, p := range cfg.Prizes {
		ids = append(ids, p.PrizeID)
	}
	ids = append(ids, extraPrizes...)

	engine, err := NewEngine(context.Background(), cfg, Dependencies{
		Store:   store,
		Catalog: catalogFor(ids...),
		Clock:   clock,
		Random:  random,
	})
	return engine, store, err
}
