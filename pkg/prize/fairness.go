// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"context"
	"math"
	"time"
)

const (
	guaranteedStep     = 0.1
	guaranteedCap      = 3.0
	guaranteedAfterWin = 0.5
	balancedWindow     = time.Hour
	balancedLowerBand  = 0.8
	balancedUpperBand  = 1.2
	balancedBoost      = 1.5
	balancedDampen     = 0.7
	neutralAdjustment  = 1.0
)

// FairnessAdjuster turns the fairness mode into a multiplier on the global win rate.
type FairnessAdjuster struct {
	tracker *SessionTracker
}

// NewFairnessAdjuster creates an adjuster reading recent rates from tracker.
func NewFairnessAdjuster(tracker *SessionTracker) *FairnessAdjuster {
	return &FairnessAdjuster{tracker: tracker}
}

// Adjust returns the multiplier for the session under mode.
//
// guaranteed climbs with attempts until the first win, then dampens.
// balanced is a proportional controller that keeps the trailing hour's win
// rate near target.
func (f *FairnessAdjuster) Adjust(ctx context.Context, session UserSession, mode FairnessMode, target float64) (float64, error) {
	switch mode {
	case FairnessGuaranteed:
		return GuaranteedMultiplier(session), nil

	case FairnessBalanced:
		actual, err := f.tracker.RecentWinRate(ctx, balancedWindow)
		if err != nil {
			return 0, err
		}
		return balancedMultiplier(actual, target), nil
	}

	return neutralAdjustment, nil
}

// GuaranteedMultiplier is min(3, 1+0.1*attempts) for a session that has never
// won and 0.5 afterwards.
func GuaranteedMultiplier(session UserSession) float64 {
	if session.Wins > 0 {
		return guaranteedAfterWin
	}
	return math.Min(guaranteedCap, 1+guaranteedStep*float64(session.Attempts))
}

func balancedMultiplier(actual, target float64) float64 {
	switch {
	case actual < target*balancedLowerBand:
		return balancedBoost
	case actual > target*balancedUpperBand:
		return balancedDampen
	}
	return neutralAdjustment
}
