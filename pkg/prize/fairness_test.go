// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestGuaranteedMultiplier_MonotonicAndCapped(t *testing.T) {
	previous := 0.0
	for attempts := 1; attempts <= 50; attempts++ {
		m := GuaranteedMultiplier(UserSession{Attempts: attempts})
		if m < previous {
			t.Fatalf("multiplier decreased at attempts=%d: %v < %v", attempts, m, previous)
		}
		if m > 3 {
			t.Fatalf("multiplier = %v at attempts=%d, expected at most 3", m, attempts)
		}
		previous = m
	}

	if previous != 3 {
		t.Errorf("multiplier after 50 attempts = %v, expected cap 3", previous)
	}

	if m := GuaranteedMultiplier(UserSession{Attempts: 1}); math.Abs(m-1.1) > 1e-9 {
		t.Errorf("multiplier at first attempt = %v, expected 1.1", m)
	}
}

func TestGuaranteedMultiplier_AfterWin(t *testing.T) {
	for _, attempts := range []int{1, 5, 40} {
		m := GuaranteedMultiplier(UserSession{Attempts: attempts, Wins: 1})
		if m != 0.5 {
			t.Errorf("multiplier with a win at attempts=%d = %v, expected 0.5", attempts, m)
		}
	}
}

func TestBalancedMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		target   float64
		expected float64
	}{
		{"well below target", 0.05, 0.2, 1.5},
		{"just under lower band", 0.159, 0.2, 1.5},
		{"inside band", 0.2, 0.2, 1},
		{"at upper band", 0.24, 0.2, 1},
		{"above upper band", 0.3, 0.2, 0.7},
		{"zero target", 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := balancedMultiplier(tt.actual, tt.target); got != tt.expected {
				t.Errorf("balancedMultiplier(%v, %v) = %v, expected %v", tt.actual, tt.target, got, tt.expected)
			}
		})
	}
}

func TestFairnessAdjuster_Modes(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(testEpoch)
	store := NewMemoryStore()
	tracker := NewSessionTracker(store, clock)
	adjuster := NewFairnessAdjuster(tracker)

	session, err := tracker.Update(ctx, testSession("s1"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := adjuster.Adjust(ctx, session, FairnessRandom, 0.3)
	if err != nil || got != 1 {
		t.Errorf("random Adjust() = %v, %v; expected 1, nil", got, err)
	}

	// One attempt and no wins in the last hour: the observed rate is 0.
	got, err = adjuster.Adjust(ctx, session, FairnessBalanced, 0.3)
	if err != nil || got != 1.5 {
		t.Errorf("balanced Adjust() with no wins = %v, %v; expected 1.5, nil", got, err)
	}

	// Record one win for the single attempt: the observed rate is 1.
	status, err := store.Claim(ctx, Claim{
		Prize: PrizeDistribution{PrizeID: "a", MaxWinners: 10},
		Entry: WinHistoryEntry{Timestamp: clock.Now(), PrizeID: "a", SessionID: "s1"},
	})
	if err != nil || status != ClaimGranted {
		t.Fatalf("Claim() = %v, %v; expected granted", status, err)
	}

	got, err = adjuster.Adjust(ctx, session, FairnessBalanced, 0.3)
	if err != nil || got != 0.7 {
		t.Errorf("balanced Adjust() above target = %v, %v; expected 0.7, nil", got, err)
	}

	// Outside the trailing hour the win no longer counts.
	clock.Advance(2 * time.Hour)
	session, _ = tracker.Update(ctx, testSession("s1"))
	got, _ = adjuster.Adjust(ctx, session, FairnessBalanced, 0.3)
	if got != 1.5 {
		t.Errorf("balanced Adjust() after window = %v, expected 1.5", got)
	}
}
