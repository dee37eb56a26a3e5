// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"time"

	"github.com/shopspring/decimal"
)

// FairnessMode controls how a session's win probability moves over time.
type FairnessMode string

const (
	FairnessRandom     FairnessMode = "random"
	FairnessGuaranteed FairnessMode = "guaranteed"
	FairnessBalanced   FairnessMode = "balanced"
)

// Valid reports whether m is a known fairness mode.
func (m FairnessMode) Valid() bool {
	switch m {
	case FairnessRandom, FairnessGuaranteed, FairnessBalanced:
		return true
	}
	return false
}

const (
	// DefaultAntifraudThreshold is used when AntifraudConfig.Threshold is zero.
	DefaultAntifraudThreshold = 0.8
	// DefaultHistoryLimit bounds the win history when EngineConfig.HistoryLimit is zero.
	DefaultHistoryLimit = 1000
)

// Reasons attached to non-winning results.
const (
	ReasonAntifraud = "Antifraud protection triggered"
	ReasonNoPrizes  = "No available prizes"
)

// TimeRestrictions limits when and how often a prize can be won.
// Zero limits mean unlimited.
type TimeRestrictions struct {
	StartTime   *time.Time `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	DailyLimit  int        `json:"dailyLimit,omitempty" yaml:"daily_limit,omitempty"`
	HourlyLimit int        `json:"hourlyLimit,omitempty" yaml:"hourly_limit,omitempty"`
}

// UserRestrictions limits how often one user can win a prize.
// CooldownPeriod is expressed in minutes.
type UserRestrictions struct {
	MaxWinsPerUser int `json:"maxWinsPerUser,omitempty" yaml:"max_wins_per_user,omitempty"`
	CooldownPeriod int `json:"cooldownPeriod,omitempty" yaml:"cooldown_period,omitempty"`
}

// Cooldown returns the cooldown period as a duration.
func (u *UserRestrictions) Cooldown() time.Duration {
	if u == nil {
		return 0
	}
	return time.Duration(u.CooldownPeriod) * time.Minute
}

// PrizeDistribution holds the allocation rules of one prize.
type PrizeDistribution struct {
	PrizeID          string            `json:"prizeId" yaml:"prize_id"`
	Probability      float64           `json:"probability" yaml:"probability"`
	MaxWinners       int               `json:"maxWinners" yaml:"max_winners"`
	CurrentWinners   int               `json:"currentWinners" yaml:"current_winners"`
	TimeRestrictions *TimeRestrictions `json:"timeRestrictions,omitempty" yaml:"time_restrictions,omitempty"`
	UserRestrictions *UserRestrictions `json:"userRestrictions,omitempty" yaml:"user_restrictions,omitempty"`
}

// Remaining returns the inventory left according to CurrentWinners.
func (d PrizeDistribution) Remaining() int {
	if d.CurrentWinners >= d.MaxWinners {
		return 0
	}
	return d.MaxWinners - d.CurrentWinners
}

func (d PrizeDistribution) clone() PrizeDistribution {
	out := d
	if d.TimeRestrictions != nil {
		tr := *d.TimeRestrictions
		if tr.StartTime != nil {
			start := *tr.StartTime
			tr.StartTime = &start
		}
		if tr.EndTime != nil {
			end := *tr.EndTime
			tr.EndTime = &end
		}
		out.TimeRestrictions = &tr
	}
	if d.UserRestrictions != nil {
		ur := *d.UserRestrictions
		out.UserRestrictions = &ur
	}
	return out
}

// AntifraudConfig holds the thresholds used by AntifraudScorer.
// A zero attempt cap disables that check.
type AntifraudConfig struct {
	MaxAttemptsPerUser    int     `json:"maxAttemptsPerUser" yaml:"max_attempts_per_user"`
	MaxAttemptsPerIP      int     `json:"maxAttemptsPerIP" yaml:"max_attempts_per_ip"`
	VelocityCheck         bool    `json:"velocityCheck" yaml:"velocity_check"`
	PatternDetection      bool    `json:"patternDetection" yaml:"pattern_detection"`
	DeviceFingerprinting  bool    `json:"deviceFingerprinting" yaml:"device_fingerprinting"`
	GeolocationValidation bool    `json:"geolocationValidation" yaml:"geolocation_validation"`
	Threshold             float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// EffectiveThreshold returns the configured threshold or the default.
func (c AntifraudConfig) EffectiveThreshold() float64 {
	if c.Threshold <= 0 {
		return DefaultAntifraudThreshold
	}
	return c.Threshold
}

// EngineConfig is the campaign-wide configuration of an Engine.
type EngineConfig struct {
	CampaignID         string              `json:"campaignId" yaml:"campaign_id"`
	Prizes             []PrizeDistribution `json:"prizes" yaml:"prizes"`
	Antifraud          AntifraudConfig     `json:"antifraud" yaml:"antifraud"`
	GlobalWinRate      float64             `json:"globalWinRate" yaml:"global_win_rate"`
	DynamicProbability bool                `json:"dynamicProbability" yaml:"dynamic_probability"`
	FairnessMode       FairnessMode        `json:"fairnessMode" yaml:"fairness_mode"`
	HistoryLimit       int                 `json:"historyLimit,omitempty" yaml:"history_limit,omitempty"`
}

// Clone returns a deep copy of the configuration.
func (c EngineConfig) Clone() EngineConfig {
	out := c
	out.Prizes = make([]PrizeDistribution, len(c.Prizes))
	for i, p := range c.Prizes {
		out.Prizes[i] = p.clone()
	}
	return out
}

// ConfigPatch carries a partial configuration update. Nil fields are kept.
// A non-nil Prizes slice replaces the whole prize list.
type ConfigPatch struct {
	CampaignID         *string             `json:"campaignId,omitempty"`
	Prizes             []PrizeDistribution `json:"prizes,omitempty"`
	Antifraud          *AntifraudConfig    `json:"antifraud,omitempty"`
	GlobalWinRate      *float64            `json:"globalWinRate,omitempty"`
	DynamicProbability *bool               `json:"dynamicProbability,omitempty"`
	FairnessMode       *FairnessMode       `json:"fairnessMode,omitempty"`
	HistoryLimit       *int                `json:"historyLimit,omitempty"`
}

// Geolocation is supplied upstream by the identity service.
type Geolocation struct {
	Country   string  `json:"country,omitempty"`
	Region    string  `json:"region,omitempty"`
	City      string  `json:"city,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// UserSession is the per-request identity snapshot. Attempts, Wins,
// FirstAttempt and LastAttempt are maintained by the engine.
type UserSession struct {
	UserID            string       `json:"userId,omitempty"`
	SessionID         string       `json:"sessionId"`
	IPAddress         string       `json:"ipAddress"`
	UserAgent         string       `json:"userAgent"`
	DeviceFingerprint string       `json:"deviceFingerprint"`
	Geolocation       *Geolocation `json:"geolocation,omitempty"`
	Attempts          int          `json:"attempts"`
	Wins              int          `json:"wins"`
	FirstAttempt      time.Time    `json:"firstAttempt"`
	LastAttempt       time.Time    `json:"lastAttempt"`
}

// WinHistoryEntry is one record of the bounded win log.
type WinHistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	PrizeID   string    `json:"prizeId"`
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId,omitempty"`
}

// Prize is the consumer-facing shape of a prize, resolved from a Catalog.
type Prize struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Value       decimal.Decimal   `json:"value"`
	Currency    string            `json:"currency,omitempty"`
	ImageURL    string            `json:"imageUrl,omitempty"`
	ItemID      string            `json:"itemId,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ResultMetadata is attached to every PrizeResult for observability.
type ResultMetadata struct {
	DrawID             string    `json:"drawId"`
	CampaignID         string    `json:"campaignId"`
	SessionID          string    `json:"sessionId"`
	Timestamp          time.Time `json:"timestamp"`
	Probability        float64   `json:"probability"`
	AntifraudScore     float64   `json:"antifraudScore"`
	FairnessAdjustment float64   `json:"fairnessAdjustment"`
	ConfigVersion      uint64    `json:"configVersion"`
}

// PrizeResult is the outcome of one DeterminePrize call.
type PrizeResult struct {
	HasWon   bool           `json:"hasWon"`
	Prize    *Prize         `json:"prize,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Metadata ResultMetadata `json:"metadata"`
}

// PrizeInventory reports the live inventory of one prize.
type PrizeInventory struct {
	PrizeID        string  `json:"prizeId"`
	Probability    float64 `json:"probability"`
	MaxWinners     int     `json:"maxWinners"`
	CurrentWinners int     `json:"currentWinners"`
	Remaining      int     `json:"remaining"`
}

// EngineStats is the read-only view served to dashboards.
type EngineStats struct {
	CampaignID     string           `json:"campaignId"`
	TotalSessions  int              `json:"totalSessions"`
	TotalAttempts  int              `json:"totalAttempts"`
	TotalWins      int              `json:"totalWins"`
	CurrentWinRate float64          `json:"currentWinRate"`
	PrizeInventory []PrizeInventory `json:"prizeInventory"`
}
