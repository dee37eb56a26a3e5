// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Signal weights of the composite antifraud score.
const (
	velocityWindow         = 5 * time.Minute
	velocityLowThreshold   = 10
	velocityHighThreshold  = 20
	velocityLowWeight      = 0.3
	velocityHighWeight     = 0.5
	ipCapWeight            = 0.4
	userCapWeight          = 0.3
	patternRatePerMinute   = 10.0
	patternWeight          = 0.6
	deviceSuspicionWeight  = 0.2
	geoSuspicionWeight     = 0.1
	patternMinimumAttempts = 2
)

// DeviceRiskScorer rates a device fingerprint. It returns a suspicion in [0,1].
type DeviceRiskScorer interface {
	ScoreDevice(ctx context.Context, session UserSession) (float64, error)
}

// GeoRiskScorer rates a session's geolocation. It returns a suspicion in [0,1].
type GeoRiskScorer interface {
	ScoreGeo(ctx context.Context, session UserSession) (float64, error)
}

// NoopDeviceRiskScorer reports no suspicion. It is the default until a
// fingerprint service is configured.
type NoopDeviceRiskScorer struct{}

func (NoopDeviceRiskScorer) ScoreDevice(context.Context, UserSession) (float64, error) { return 0, nil }

// NoopGeoRiskScorer reports no suspicion. It is the default until an IP
// reputation or geolocation service is configured.
type NoopGeoRiskScorer struct{}

func (NoopGeoRiskScorer) ScoreGeo(context.Context, UserSession) (float64, error) { return 0, nil }

// AntifraudScorer computes the composite suspicion score of a session.
type AntifraudScorer struct {
	tracker *SessionTracker
	device  DeviceRiskScorer
	geo     GeoRiskScorer
}

// NewAntifraudScorer creates a scorer. Nil scorers fall back to the no-op ones.
func NewAntifraudScorer(tracker *SessionTracker, device DeviceRiskScorer, geo GeoRiskScorer) *AntifraudScorer {
	if device == nil {
		device = NoopDeviceRiskScorer{}
	}
	if geo == nil {
		geo = NoopGeoRiskScorer{}
	}
	return &AntifraudScorer{tracker: tracker, device: device, geo: geo}
}

// Score returns the additive composite of every enabled signal, clamped to [0,1].
// The session must already be tracked.
func (a *AntifraudScorer) Score(ctx context.Context, session UserSession, cfg AntifraudConfig) (float64, error) {
	var score float64

	if cfg.VelocityCheck {
		recent, err := a.tracker.AttemptsWithin(ctx, session.SessionID, velocityWindow)
		if err != nil {
			return 0, err
		}
		score += velocityPenalty(recent)
	}

	if cfg.MaxAttemptsPerIP > 0 && session.IPAddress != "" {
		n, err := a.tracker.IPAttempts(ctx, session.IPAddress)
		if err != nil {
			return 0, err
		}
		if n > cfg.MaxAttemptsPerIP {
			score += ipCapWeight
		}
	}

	if cfg.MaxAttemptsPerUser > 0 && session.UserID != "" {
		n, err := a.tracker.UserAttempts(ctx, session.UserID)
		if err != nil {
			return 0, err
		}
		if n > cfg.MaxAttemptsPerUser {
			score += userCapWeight
		}
	}

	if cfg.PatternDetection && isSuspiciousPattern(session) {
		score += patternWeight
	}

	if cfg.DeviceFingerprinting {
		s, err := a.device.ScoreDevice(ctx, session)
		if err != nil {
			return 0, fmt.Errorf("device risk: %w", err)
		}
		score += deviceSuspicionWeight * clamp01(s)
	}

	if cfg.GeolocationValidation {
		s, err := a.geo.ScoreGeo(ctx, session)
		if err != nil {
			return 0, fmt.Errorf("geo risk: %w", err)
		}
		score += geoSuspicionWeight * clamp01(s)
	}

	score = math.Min(1, score)
	if score > 0 {
		logrus.Debugf("antifraud score for session %s: %.2f", session.SessionID, score)
	}
	return score, nil
}

func velocityPenalty(recent int) float64 {
	switch {
	case recent > velocityHighThreshold:
		return velocityHighWeight
	case recent > velocityLowThreshold:
		return velocityLowWeight
	}
	return 0
}

// isSuspiciousPattern flags sessions whose attempt rate since the first attempt
// exceeds patternRatePerMinute. Elapsed time is floored at one minute.
func isSuspiciousPattern(session UserSession) bool {
	if session.Attempts < patternMinimumAttempts {
		return false
	}

	minutes := session.LastAttempt.Sub(session.FirstAttempt).Minutes()
	if minutes < 1 {
		minutes = 1
	}
	return float64(session.Attempts)/minutes > patternRatePerMinute
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
