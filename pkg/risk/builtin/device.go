package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/AccelByte/extend-prize-engine/pkg/risk"
	"github.com/sirupsen/logrus"
)

const (
	DeviceBlocklistType  = "device_blocklist"
	DeviceMissingType    = "device_missing"
	UserAgentPatternType = "user_agent_pattern"

	// DefaultMissingDeviceScore is used when device_missing has no score parameter
	DefaultMissingDeviceScore = 0.5
	// DefaultUserAgentScore is used when user_agent_pattern has no score parameter
	DefaultUserAgentScore = 1.0
)

// DeviceBlocklistScorer flags fingerprints that are known to be abusive.
type DeviceBlocklistScorer struct {
	config  risk.ScorerConfig
	blocked map[string]bool
}

// NewDeviceBlocklistScorer reads the "fingerprints" parameter.
func NewDeviceBlocklistScorer(config risk.ScorerConfig) *DeviceBlocklistScorer {
	blocked := config.GetStringSet("fingerprints", strings.TrimSpace)
	logrus.Infof("creating device blocklist scorer with %d fingerprints", len(blocked))

	return &DeviceBlocklistScorer{config: config, blocked: blocked}
}

func (s *DeviceBlocklistScorer) ID() string                { return s.config.ID }
func (s *DeviceBlocklistScorer) Config() risk.ScorerConfig { return s.config }

// ScoreDevice returns 1 for a blocked fingerprint.
func (s *DeviceBlocklistScorer) ScoreDevice(ctx context.Context, session prize.UserSession) (float64, error) {
	if session.DeviceFingerprint != "" && s.blocked[session.DeviceFingerprint] {
		logrus.Debugf("device %s of session %s is blocklisted", session.DeviceFingerprint, session.SessionID)
		return 1, nil
	}
	return 0, nil
}

// DeviceMissingScorer penalizes sessions without a fingerprint.
type DeviceMissingScorer struct {
	config risk.ScorerConfig
	score  float64
}

func NewDeviceMissingScorer(config risk.ScorerConfig) *DeviceMissingScorer {
	return &DeviceMissingScorer{
		config: config,
		score:  config.GetFloat("score", DefaultMissingDeviceScore),
	}
}

func (s *DeviceMissingScorer) ID() string                { return s.config.ID }
func (s *DeviceMissingScorer) Config() risk.ScorerConfig { return s.config }

func (s *DeviceMissingScorer) ScoreDevice(ctx context.Context, session prize.UserSession) (float64, error) {
	if strings.TrimSpace(session.DeviceFingerprint) == "" {
		return s.score, nil
	}
	return 0, nil
}

// UserAgentPatternScorer flags user agents of automation tools.
type UserAgentPatternScorer struct {
	config   risk.ScorerConfig
	patterns []string
	score    float64
}

// NewUserAgentPatternScorer reads the "patterns" and "score" parameters.
// Matching is a case-insensitive substring test.
func NewUserAgentPatternScorer(config risk.ScorerConfig) (*UserAgentPatternScorer, error) {
	raw := config.GetStringSlice("patterns")
	if len(raw) == 0 {
		return nil, fmt.Errorf("user_agent_pattern scorer %s requires patterns", config.ID)
	}

	patterns := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}

	return &UserAgentPatternScorer{
		config:   config,
		patterns: patterns,
		score:    config.GetFloat("score", DefaultUserAgentScore),
	}, nil
}

func (s *UserAgentPatternScorer) ID() string                { return s.config.ID }
func (s *UserAgentPatternScorer) Config() risk.ScorerConfig { return s.config }

func (s *UserAgentPatternScorer) ScoreDevice(ctx context.Context, session prize.UserSession) (float64, error) {
	ua := strings.ToLower(session.UserAgent)
	for _, p := range s.patterns {
		if strings.Contains(ua, p) {
			logrus.Debugf("user agent of session %s matches %q", session.SessionID, p)
			return s.score, nil
		}
	}
	return 0, nil
}
