package builtin

import (
	"context"
	"testing"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/AccelByte/extend-prize-engine/pkg/risk"
)

func TestDeviceBlocklistScorer(t *testing.T) {
	s := NewDeviceBlocklistScorer(risk.ScorerConfig{
		ID:         "bl",
		Parameters: map[string]interface{}{"fingerprints": []interface{}{"fp-bad", " fp-worse "}},
	})

	tests := []struct {
		fingerprint string
		expected    float64
	}{
		{"fp-bad", 1},
		{"fp-worse", 1},
		{"fp-good", 0},
		{"", 0},
	}

	for _, tt := range tests {
		got, err := s.ScoreDevice(context.Background(), prize.UserSession{DeviceFingerprint: tt.fingerprint})
		if err != nil {
			t.Fatalf("ScoreDevice() error = %v", err)
		}
		if got != tt.expected {
			t.Errorf("ScoreDevice(%q) = %v, expected %v", tt.fingerprint, got, tt.expected)
		}
	}
}

func TestDeviceMissingScorer(t *testing.T) {
	s := NewDeviceMissingScorer(risk.ScorerConfig{ID: "dm"})

	if got, _ := s.ScoreDevice(context.Background(), prize.UserSession{}); got != DefaultMissingDeviceScore {
		t.Errorf("ScoreDevice() without fingerprint = %v, expected default %v", got, DefaultMissingDeviceScore)
	}
	if got, _ := s.ScoreDevice(context.Background(), prize.UserSession{DeviceFingerprint: "fp"}); got != 0 {
		t.Errorf("ScoreDevice() with fingerprint = %v, expected 0", got)
	}
}

func TestUserAgentPatternScorer(t *testing.T) {
	s, err := NewUserAgentPatternScorer(risk.ScorerConfig{
		ID:         "ua",
		Parameters: map[string]interface{}{"patterns": []interface{}{"HeadlessChrome", "python-requests"}},
	})
	if err != nil {
		t.Fatalf("NewUserAgentPatternScorer() error = %v", err)
	}

	tests := []struct {
		name      string
		userAgent string
		expected  float64
	}{
		{"headless browser", "Mozilla/5.0 HeadlessChrome/119.0", 1},
		{"case insensitive", "PYTHON-REQUESTS/2.31", 1},
		{"regular browser", "Mozilla/5.0 (Windows NT 10.0) Chrome/119.0", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := s.ScoreDevice(context.Background(), prize.UserSession{UserAgent: tt.userAgent})
			if got != tt.expected {
				t.Errorf("ScoreDevice() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestGeoScorers(t *testing.T) {
	deny, err := NewGeoCountryDenylistScorer(risk.ScorerConfig{
		ID:         "deny",
		Parameters: map[string]interface{}{"countries": []interface{}{"xx", "YY"}},
	})
	if err != nil {
		t.Fatalf("NewGeoCountryDenylistScorer() error = %v", err)
	}
	missing := NewGeoMissingScorer(risk.ScorerConfig{ID: "gm", Parameters: map[string]interface{}{"score": 0.3}})

	tests := []struct {
		name         string
		geo          *prize.Geolocation
		denyScore    float64
		missingScore float64
	}{
		{"no geolocation", nil, 0, 0.3},
		{"empty country", &prize.Geolocation{}, 0, 0.3},
		{"denied lower case", &prize.Geolocation{Country: "xx"}, 1, 0},
		{"denied upper case", &prize.Geolocation{Country: "YY"}, 1, 0},
		{"allowed", &prize.Geolocation{Country: "ID"}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := prize.UserSession{Geolocation: tt.geo}
			if got, _ := deny.ScoreGeo(context.Background(), session); got != tt.denyScore {
				t.Errorf("denylist ScoreGeo() = %v, expected %v", got, tt.denyScore)
			}
			if got, _ := missing.ScoreGeo(context.Background(), session); got != tt.missingScore {
				t.Errorf("missing ScoreGeo() = %v, expected %v", got, tt.missingScore)
			}
		})
	}

	if _, err := NewGeoCountryDenylistScorer(risk.ScorerConfig{ID: "empty"}); err == nil {
		t.Error("expected error for denylist without countries")
	}
}
