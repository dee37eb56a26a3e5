// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	highStockRatio  = 0.8
	lowStockRatio   = 0.2
	highStockFactor = 1.2
	lowStockFactor  = 0.8
)

// PrizeSelector filters eligible prizes and performs the weighted draw.
type PrizeSelector struct {
	store WinStore
	clock Clock
	rand  RandomSource
}

// NewPrizeSelector creates a selector reading live counters from store.
func NewPrizeSelector(store WinStore, clock Clock, random RandomSource) *PrizeSelector {
	return &PrizeSelector{store: store, clock: clock, rand: random}
}

// Select returns a working copy of the drawn prize, or nil when nothing is
// eligible. Prizes listed in exclude are skipped. The returned copy carries the
// live CurrentWinners and, with dynamic probability, the rescaled probability.
func (s *PrizeSelector) Select(ctx context.Context, session UserSession, cfg EngineConfig, exclude map[string]bool) (*PrizeDistribution, error) {
	eligible, err := s.Eligible(ctx, session, cfg.Prizes, exclude)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	if cfg.DynamicProbability {
		applyInventoryPressure(eligible)
	}

	return s.draw(eligible), nil
}

// Eligible returns working copies of every prize that can still be won by
// the session right now.
func (s *PrizeSelector) Eligible(ctx context.Context, session UserSession, prizes []PrizeDistribution, exclude map[string]bool) ([]PrizeDistribution, error) {
	now := s.clock.Now()
	dayStart := startOfDay(now)

	var eligible []PrizeDistribution
	for _, p := range prizes {
		if exclude[p.PrizeID] || p.Probability <= 0 {
			continue
		}

		winners, err := s.store.PrizeWinners(ctx, p.PrizeID)
		if err != nil {
			return nil, fmt.Errorf("%w: prize winners: %v", ErrStoreUnavailable, err)
		}
		if winners >= p.MaxWinners {
			continue
		}

		ok, err := s.withinTimeRestrictions(ctx, p, now, dayStart)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		ok, err = s.withinUserRestrictions(ctx, p, session.UserID, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		working := p.clone()
		working.CurrentWinners = winners
		eligible = append(eligible, working)
	}

	return eligible, nil
}

func (s *PrizeSelector) withinTimeRestrictions(ctx context.Context, p PrizeDistribution, now, dayStart time.Time) (bool, error) {
	tr := p.TimeRestrictions
	if tr == nil {
		return true, nil
	}

	if tr.StartTime != nil && now.Before(*tr.StartTime) {
		return false, nil
	}
	if tr.EndTime != nil && now.After(*tr.EndTime) {
		return false, nil
	}

	if tr.DailyLimit > 0 {
		n, err := s.store.WinsSince(ctx, p.PrizeID, dayStart)
		if err != nil {
			return false, fmt.Errorf("%w: daily wins: %v", ErrStoreUnavailable, err)
		}
		if n >= tr.DailyLimit {
			return false, nil
		}
	}

	if tr.HourlyLimit > 0 {
		n, err := s.store.WinsSince(ctx, p.PrizeID, now.Add(-time.Hour))
		if err != nil {
			return false, fmt.Errorf("%w: hourly wins: %v", ErrStoreUnavailable, err)
		}
		if n >= tr.HourlyLimit {
			return false, nil
		}
	}

	return true, nil
}

func (s *PrizeSelector) withinUserRestrictions(ctx context.Context, p PrizeDistribution, userID string, now time.Time) (bool, error) {
	ur := p.UserRestrictions
	if ur == nil || userID == "" {
		return true, nil
	}

	rec, err := s.store.UserPrizeWins(ctx, userID, p.PrizeID)
	if err != nil {
		return false, fmt.Errorf("%w: user prize wins: %v", ErrStoreUnavailable, err)
	}

	if ur.MaxWinsPerUser > 0 && rec.Count >= ur.MaxWinsPerUser {
		return false, nil
	}
	if ur.CooldownPeriod > 0 && !rec.LastWin.IsZero() && now.Before(rec.LastWin.Add(ur.Cooldown())) {
		logrus.Debugf("prize %s in cooldown for user %s until %v", p.PrizeID, userID, rec.LastWin.Add(ur.Cooldown()))
		return false, nil
	}

	return true, nil
}

// applyInventoryPressure boosts well-stocked prizes and throttles nearly
// exhausted ones. It only touches the working copies.
func applyInventoryPressure(prizes []PrizeDistribution) {
	for i := range prizes {
		p := &prizes[i]
		if p.MaxWinners <= 0 {
			continue
		}

		ratio := float64(p.MaxWinners-p.CurrentWinners) / float64(p.MaxWinners)
		switch {
		case ratio > highStockRatio:
			p.Probability *= highStockFactor
		case ratio < lowStockRatio:
			p.Probability *= lowStockFactor
		}
	}
}

// draw picks r in [0, total) and walks the list subtracting each probability
// until r drops to zero or below.
func (s *PrizeSelector) draw(prizes []PrizeDistribution) *PrizeDistribution {
	var total float64
	for _, p := range prizes {
		total += p.Probability
	}

	r := s.rand.Float64() * total
	for i := range prizes {
		r -= prizes[i].Probability
		if r <= 0 {
			return &prizes[i]
		}
	}

	// Float drift can leave r marginally positive.
	return &prizes[len(prizes)-1]
}
