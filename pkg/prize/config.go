// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"fmt"
)

// probabilityTolerance absorbs float drift when comparing probability sums.
const probabilityTolerance = 1e-9

// Validate checks the configuration for errors that must be rejected at load time.
// Errors wrap ErrInvalidConfig.
func (c *EngineConfig) Validate() error {
	if c.CampaignID == "" {
		return fmt.Errorf("%w: campaign id is required", ErrInvalidConfig)
	}
	if c.GlobalWinRate < 0 || c.GlobalWinRate > 1 {
		return fmt.Errorf("%w: globalWinRate %v out of range [0,1]", ErrInvalidConfig, c.GlobalWinRate)
	}
	if c.FairnessMode != "" && !c.FairnessMode.Valid() {
		return fmt.Errorf("%w: unknown fairness mode %q", ErrInvalidConfig, c.FairnessMode)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("%w: historyLimit must be non-negative", ErrInvalidConfig)
	}
	if err := c.Antifraud.validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Prizes))
	for i := range c.Prizes {
		p := &c.Prizes[i]
		if p.PrizeID == "" {
			return fmt.Errorf("%w: prize at index %d has empty id", ErrInvalidConfig, i)
		}
		if seen[p.PrizeID] {
			return fmt.Errorf("%w: duplicate prize id %s", ErrInvalidConfig, p.PrizeID)
		}
		seen[p.PrizeID] = true

		if err := p.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (a AntifraudConfig) validate() error {
	if a.MaxAttemptsPerIP < 0 || a.MaxAttemptsPerUser < 0 {
		return fmt.Errorf("%w: antifraud attempt caps must be non-negative", ErrInvalidConfig)
	}
	if a.Threshold < 0 || a.Threshold > 1 {
		return fmt.Errorf("%w: antifraud threshold %v out of range [0,1]", ErrInvalidConfig, a.Threshold)
	}
	return nil
}

func (p *PrizeDistribution) validate() error {
	if p.Probability < 0 || p.Probability > 1 {
		return fmt.Errorf("%w: prize %s probability %v out of range [0,1]", ErrInvalidConfig, p.PrizeID, p.Probability)
	}
	if p.MaxWinners < 0 {
		return fmt.Errorf("%w: prize %s maxWinners must be non-negative", ErrInvalidConfig, p.PrizeID)
	}
	if p.CurrentWinners < 0 || p.CurrentWinners > p.MaxWinners {
		return fmt.Errorf("%w: prize %s currentWinners %d outside [0,%d]",
			ErrInvalidConfig, p.PrizeID, p.CurrentWinners, p.MaxWinners)
	}

	if tr := p.TimeRestrictions; tr != nil {
		if tr.DailyLimit < 0 || tr.HourlyLimit < 0 {
			return fmt.Errorf("%w: prize %s time limits must be non-negative", ErrInvalidConfig, p.PrizeID)
		}
		if tr.StartTime != nil && tr.EndTime != nil && !tr.EndTime.After(*tr.StartTime) {
			return fmt.Errorf("%w: prize %s endTime must be after startTime", ErrInvalidConfig, p.PrizeID)
		}
	}

	if ur := p.UserRestrictions; ur != nil {
		if ur.MaxWinsPerUser < 0 || ur.CooldownPeriod < 0 {
			return fmt.Errorf("%w: prize %s user restrictions must be non-negative", ErrInvalidConfig, p.PrizeID)
		}
	}

	return nil
}

// withDefaults fills zero values that have a documented default.
func (c EngineConfig) withDefaults() EngineConfig {
	if c.FairnessMode == "" {
		c.FairnessMode = FairnessRandom
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.Antifraud.Threshold == 0 {
		c.Antifraud.Threshold = DefaultAntifraudThreshold
	}
	return c
}

// NormalizeProbabilities rescales prize probabilities so they sum to 1 when the
// configured sum exceeds 1. Relative ratios are preserved. Sums at or below 1
// are left untouched: each probability is an independent chance conditioned on
// a winning roll. The input slice is modified in place and returned.
func NormalizeProbabilities(prizes []PrizeDistribution) []PrizeDistribution {
	var total float64
	for _, p := range prizes {
		total += p.Probability
	}

	if total <= 1+probabilityTolerance {
		return prizes
	}

	for i := range prizes {
		prizes[i].Probability = prizes[i].Probability / total
	}
	return prizes
}

// apply returns a copy of c with the patch applied and reports whether the
// prize list was replaced.
func (c EngineConfig) apply(patch ConfigPatch) (EngineConfig, bool) {
	out := c.Clone()
	prizesChanged := false

	if patch.CampaignID != nil {
		out.CampaignID = *patch.CampaignID
	}
	if patch.Prizes != nil {
		out.Prizes = make([]PrizeDistribution, len(patch.Prizes))
		for i, p := range patch.Prizes {
			out.Prizes[i] = p.clone()
		}
		prizesChanged = true
	}
	if patch.Antifraud != nil {
		out.Antifraud = *patch.Antifraud
	}
	if patch.GlobalWinRate != nil {
		out.GlobalWinRate = *patch.GlobalWinRate
	}
	if patch.DynamicProbability != nil {
		out.DynamicProbability = *patch.DynamicProbability
	}
	if patch.FairnessMode != nil {
		out.FairnessMode = *patch.FairnessMode
	}
	if patch.HistoryLimit != nil {
		out.HistoryLimit = *patch.HistoryLimit
	}

	return out, prizesChanged
}
