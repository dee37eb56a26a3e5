// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dependencies are the collaborators injected into an Engine.
// Store and Catalog are required. The rest have defaults.
type Dependencies struct {
	Store        Store
	Catalog      Catalog
	Clock        Clock
	Random       RandomSource
	DeviceScorer DeviceRiskScorer
	GeoScorer    GeoRiskScorer
}

// configSnapshot is an immutable view of the configuration.
type configSnapshot struct {
	cfg     EngineConfig
	version uint64
}

// Engine decides, per attempt, whether a session wins and which prize it gets.
// It is safe for concurrent use.
type Engine struct {
	store    Store
	catalog  Catalog
	clock    Clock
	random   RandomSource
	tracker  *SessionTracker
	scorer   *AntifraudScorer
	fairness *FairnessAdjuster
	selector *PrizeSelector

	snapshot atomic.Pointer[configSnapshot]
	updateMu sync.Mutex
}

// NewEngine validates cfg, normalizes prize probabilities and seeds prize
// counters in the store.
func NewEngine(ctx context.Context, cfg EngineConfig, deps Dependencies) (*Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", ErrInvalidConfig)
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Random == nil {
		deps.Random = NewRandomSource(time.Now().UnixNano())
	}

	tracker := NewSessionTracker(deps.Store, deps.Clock)
	e := &Engine{
		store:    deps.Store,
		catalog:  deps.Catalog,
		clock:    deps.Clock,
		random:   deps.Random,
		tracker:  tracker,
		scorer:   NewAntifraudScorer(tracker, deps.DeviceScorer, deps.GeoScorer),
		fairness: NewFairnessAdjuster(tracker),
		selector: NewPrizeSelector(deps.Store, deps.Clock, deps.Random),
	}

	cfg = cfg.Clone().withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	NormalizeProbabilities(cfg.Prizes)

	if err := e.seedWinners(ctx, cfg.Prizes); err != nil {
		return nil, err
	}

	e.snapshot.Store(&configSnapshot{cfg: cfg, version: 1})
	logrus.Infof("prize engine initialized: campaign=%s prizes=%d globalWinRate=%.3f fairness=%s",
		cfg.CampaignID, len(cfg.Prizes), cfg.GlobalWinRate, cfg.FairnessMode)

	return e, nil
}

func (e *Engine) seedWinners(ctx context.Context, prizes []PrizeDistribution) error {
	for _, p := range prizes {
		if err := e.store.SeedWinners(ctx, p.PrizeID, p.CurrentWinners); err != nil {
			return fmt.Errorf("%w: seed winners for %s: %v", ErrStoreUnavailable, p.PrizeID, err)
		}
	}
	return nil
}

// Config returns a copy of the active configuration. CurrentWinners holds
// the values the prizes were configured with; see LiveConfig for the store
// counters.
func (e *Engine) Config() EngineConfig {
	return e.snapshot.Load().cfg.Clone()
}

// LiveConfig returns the active configuration with CurrentWinners replaced by
// the live store counters.
func (e *Engine) LiveConfig(ctx context.Context) (EngineConfig, error) {
	cfg := e.Config()
	for i := range cfg.Prizes {
		winners, err := e.store.PrizeWinners(ctx, cfg.Prizes[i].PrizeID)
		if err != nil {
			return EngineConfig{}, fmt.Errorf("%w: prize winners: %v", ErrStoreUnavailable, err)
		}
		cfg.Prizes[i].CurrentWinners = winners
	}
	return cfg, nil
}

// DeterminePrize runs one attempt for the session. Expected non-winning
// outcomes are returned as a result with HasWon=false. An error means the
// decision could not be made.
func (e *Engine) DeterminePrize(ctx context.Context, session UserSession) (PrizeResult, error) {
	snap := e.snapshot.Load()
	cfg := snap.cfg

	tracked, err := e.tracker.Update(ctx, session)
	if err != nil {
		return PrizeResult{}, err
	}

	now := tracked.LastAttempt
	result := PrizeResult{
		Metadata: ResultMetadata{
			DrawID:        uuid.NewString(),
			CampaignID:    cfg.CampaignID,
			SessionID:     tracked.SessionID,
			Timestamp:     now,
			ConfigVersion: snap.version,
		},
	}

	score, err := e.scorer.Score(ctx, tracked, cfg.Antifraud)
	if err != nil {
		return PrizeResult{}, err
	}
	result.Metadata.AntifraudScore = score

	if score > cfg.Antifraud.EffectiveThreshold() {
		logrus.Infof("antifraud tripped for session %s: score=%.2f", tracked.SessionID, score)
		result.Reason = ReasonAntifraud
		return result, nil
	}

	adjustment, err := e.fairness.Adjust(ctx, tracked, cfg.FairnessMode, cfg.GlobalWinRate)
	if err != nil {
		return PrizeResult{}, err
	}
	probability := math.Max(0, math.Min(1, cfg.GlobalWinRate*adjustment))
	result.Metadata.FairnessAdjustment = adjustment
	result.Metadata.Probability = probability

	if !(e.random.Float64() < probability) {
		return result, nil
	}

	won, err := e.awardPrize(ctx, tracked, cfg, now)
	if err != nil {
		return PrizeResult{}, err
	}
	if won == nil {
		result.Reason = ReasonNoPrizes
		return result, nil
	}

	result.HasWon = true
	result.Prize = won
	logrus.Infof("session %s won prize %s (campaign %s)", tracked.SessionID, won.ID, cfg.CampaignID)
	return result, nil
}

// awardPrize selects and atomically claims a prize. A candidate that loses
// the claim to a concurrent winner is excluded and the draw repeats over the
// remaining prizes. It returns nil when nothing can be claimed.
func (e *Engine) awardPrize(ctx context.Context, session UserSession, cfg EngineConfig, now time.Time) (*Prize, error) {
	exclude := make(map[string]bool)

	for {
		candidate, err := e.selector.Select(ctx, session, cfg, exclude)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, nil
		}

		display, err := e.lookup(ctx, candidate.PrizeID)
		if err != nil {
			return nil, err
		}

		status, err := e.store.Claim(ctx, Claim{
			Prize: *candidate,
			Entry: WinHistoryEntry{
				Timestamp: now,
				PrizeID:   candidate.PrizeID,
				SessionID: session.SessionID,
				UserID:    session.UserID,
			},
			DayStart:     startOfDay(now),
			HistoryLimit: cfg.HistoryLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: claim prize %s: %v", ErrStoreUnavailable, candidate.PrizeID, err)
		}

		if status == ClaimGranted {
			return &display, nil
		}

		logrus.Debugf("claim of prize %s rejected for session %s: %s", candidate.PrizeID, session.SessionID, status)
		exclude[candidate.PrizeID] = true
	}
}

func (e *Engine) lookup(ctx context.Context, prizeID string) (Prize, error) {
	p, err := e.catalog.Lookup(ctx, prizeID)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, ErrPrizeNotFound) {
		return Prize{}, fmt.Errorf("lookup prize %s: %w", prizeID, err)
	}
	return Prize{}, fmt.Errorf("%w: lookup prize %s: %v", ErrCatalogUnavailable, prizeID, err)
}

// UpdateConfig applies patch to a copy of the active configuration and swaps
// it in. In-flight decisions keep the snapshot they started with. When the
// prize list changes, every prize must resolve in the catalog, probabilities
// are renormalized and new prize counters are seeded.
//
// The campaign id cannot change: store keys are scoped to it.
func (e *Engine) UpdateConfig(ctx context.Context, patch ConfigPatch) error {
	e.updateMu.Lock()
	defer e.updateMu.Unlock()

	current := e.snapshot.Load()
	if patch.CampaignID != nil && *patch.CampaignID != current.cfg.CampaignID {
		return fmt.Errorf("%w: campaign id is fixed at %q", ErrInvalidConfig, current.cfg.CampaignID)
	}

	next, prizesChanged := current.cfg.apply(patch)
	next = next.withDefaults()

	if err := next.Validate(); err != nil {
		return err
	}

	if prizesChanged {
		if err := e.checkCatalog(ctx, next.Prizes); err != nil {
			return err
		}
		NormalizeProbabilities(next.Prizes)
		if err := e.seedWinners(ctx, next.Prizes); err != nil {
			return err
		}
	}

	e.snapshot.Store(&configSnapshot{cfg: next, version: current.version + 1})
	logrus.Infof("prize engine config updated: campaign=%s version=%d prizesChanged=%v",
		next.CampaignID, current.version+1, prizesChanged)

	return nil
}

// checkCatalog fails with ErrInvalidConfig when a prize has no catalog entry.
func (e *Engine) checkCatalog(ctx context.Context, prizes []PrizeDistribution) error {
	var missing []string
	for _, p := range prizes {
		_, err := e.catalog.Lookup(ctx, p.PrizeID)
		switch {
		case err == nil:
		case errors.Is(err, ErrPrizeNotFound):
			missing = append(missing, p.PrizeID)
		default:
			return fmt.Errorf("%w: lookup prize %s: %v", ErrCatalogUnavailable, p.PrizeID, err)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: prizes missing from catalog: %v", ErrInvalidConfig, missing)
	}
	return nil
}

// GetEngineStats returns aggregate counters and live prize inventory.
func (e *Engine) GetEngineStats(ctx context.Context) (EngineStats, error) {
	cfg := e.snapshot.Load().cfg

	sessions, err := e.store.SessionCount(ctx)
	if err != nil {
		return EngineStats{}, fmt.Errorf("%w: session count: %v", ErrStoreUnavailable, err)
	}
	attempts, err := e.store.TotalAttempts(ctx)
	if err != nil {
		return EngineStats{}, fmt.Errorf("%w: total attempts: %v", ErrStoreUnavailable, err)
	}
	wins, err := e.store.TotalWins(ctx)
	if err != nil {
		return EngineStats{}, fmt.Errorf("%w: total wins: %v", ErrStoreUnavailable, err)
	}

	stats := EngineStats{
		CampaignID:     cfg.CampaignID,
		TotalSessions:  sessions,
		TotalAttempts:  attempts,
		TotalWins:      wins,
		PrizeInventory: make([]PrizeInventory, 0, len(cfg.Prizes)),
	}
	if attempts > 0 {
		stats.CurrentWinRate = float64(wins) / float64(attempts)
	}

	for _, p := range cfg.Prizes {
		winners, err := e.store.PrizeWinners(ctx, p.PrizeID)
		if err != nil {
			return EngineStats{}, fmt.Errorf("%w: prize winners: %v", ErrStoreUnavailable, err)
		}
		remaining := p.MaxWinners - winners
		if remaining < 0 {
			remaining = 0
		}
		stats.PrizeInventory = append(stats.PrizeInventory, PrizeInventory{
			PrizeID:        p.PrizeID,
			Probability:    p.Probability,
			MaxWinners:     p.MaxWinners,
			CurrentWinners: winners,
			Remaining:      remaining,
		})
	}

	return stats, nil
}

// History returns the retained win history, oldest first.
func (e *Engine) History(ctx context.Context) ([]WinHistoryEntry, error) {
	h, err := e.store.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: history: %v", ErrStoreUnavailable, err)
	}
	return h, nil
}
