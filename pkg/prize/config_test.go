// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestEngineConfig_Validate(t *testing.T) {
	start := testEpoch
	end := testEpoch.Add(-time.Hour)

	tests := []struct {
		name    string
		cfg     EngineConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: EngineConfig{
				CampaignID:    "summer",
				GlobalWinRate: 0.3,
				FairnessMode:  FairnessBalanced,
				Prizes: []PrizeDistribution{
					{PrizeID: "a", Probability: 0.5, MaxWinners: 10},
				},
			},
		},
		{
			name:    "missing campaign id",
			cfg:     EngineConfig{GlobalWinRate: 0.3},
			wantErr: true,
		},
		{
			name:    "global win rate above one",
			cfg:     EngineConfig{CampaignID: "c", GlobalWinRate: 1.5},
			wantErr: true,
		},
		{
			name:    "unknown fairness mode",
			cfg:     EngineConfig{CampaignID: "c", FairnessMode: "lucky"},
			wantErr: true,
		},
		{
			name: "negative probability",
			cfg: EngineConfig{CampaignID: "c", Prizes: []PrizeDistribution{
				{PrizeID: "a", Probability: -0.1, MaxWinners: 1},
			}},
			wantErr: true,
		},
		{
			name: "duplicate prize id",
			cfg: EngineConfig{CampaignID: "c", Prizes: []PrizeDistribution{
				{PrizeID: "a", Probability: 0.1, MaxWinners: 1},
				{PrizeID: "a", Probability: 0.2, MaxWinners: 1},
			}},
			wantErr: true,
		},
		{
			name: "current winners above max",
			cfg: EngineConfig{CampaignID: "c", Prizes: []PrizeDistribution{
				{PrizeID: "a", Probability: 0.1, MaxWinners: 1, CurrentWinners: 2},
			}},
			wantErr: true,
		},
		{
			name: "end before start",
			cfg: EngineConfig{CampaignID: "c", Prizes: []PrizeDistribution{
				{PrizeID: "a", Probability: 0.1, MaxWinners: 1,
					TimeRestrictions: &TimeRestrictions{StartTime: &start, EndTime: &end}},
			}},
			wantErr: true,
		},
		{
			name: "negative cooldown",
			cfg: EngineConfig{CampaignID: "c", Prizes: []PrizeDistribution{
				{PrizeID: "a", Probability: 0.1, MaxWinners: 1,
					UserRestrictions: &UserRestrictions{CooldownPeriod: -5}},
			}},
			wantErr: true,
		},
		{
			name:    "antifraud threshold out of range",
			cfg:     EngineConfig{CampaignID: "c", Antifraud: AntifraudConfig{Threshold: 2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, expected to wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestNormalizeProbabilities(t *testing.T) {
	t.Run("sum above one is rescaled preserving ratios", func(t *testing.T) {
		prizes := []PrizeDistribution{
			{PrizeID: "a", Probability: 0.9},
			{PrizeID: "b", Probability: 0.6},
			{PrizeID: "c", Probability: 0.3},
		}
		NormalizeProbabilities(prizes)

		var sum float64
		for _, p := range prizes {
			sum += p.Probability
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("sum = %v, expected 1", sum)
		}
		if ratio := prizes[0].Probability / prizes[2].Probability; math.Abs(ratio-3) > 1e-9 {
			t.Errorf("ratio a/c = %v, expected 3", ratio)
		}
	})

	t.Run("sum below one is untouched", func(t *testing.T) {
		prizes := []PrizeDistribution{
			{PrizeID: "a", Probability: 0.2},
			{PrizeID: "b", Probability: 0.3},
		}
		NormalizeProbabilities(prizes)

		if prizes[0].Probability != 0.2 || prizes[1].Probability != 0.3 {
			t.Errorf("probabilities = %v/%v, expected unchanged", prizes[0].Probability, prizes[1].Probability)
		}
	})
}

func TestEngineConfig_ApplyDoesNotMutateOriginal(t *testing.T) {
	original := EngineConfig{
		CampaignID:    "c",
		GlobalWinRate: 0.5,
		Prizes: []PrizeDistribution{
			{PrizeID: "a", Probability: 0.5, MaxWinners: 5,
				UserRestrictions: &UserRestrictions{CooldownPeriod: 10}},
		},
	}

	rate := 0.25
	next, changed := original.apply(ConfigPatch{GlobalWinRate: &rate})
	if changed {
		t.Error("prizesChanged = true, expected false when prizes are not patched")
	}
	if next.GlobalWinRate != 0.25 {
		t.Errorf("GlobalWinRate = %v, expected 0.25", next.GlobalWinRate)
	}

	next.Prizes[0].UserRestrictions.CooldownPeriod = 99
	if original.Prizes[0].UserRestrictions.CooldownPeriod != 10 {
		t.Error("patched copy shares restrictions with the original")
	}

	_, changed = original.apply(ConfigPatch{Prizes: []PrizeDistribution{}})
	if !changed {
		t.Error("prizesChanged = false, expected true for an explicit empty prize list")
	}
}
