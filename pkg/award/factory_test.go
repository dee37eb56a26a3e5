package award_test

import (
	"errors"
	"testing"

	"github.com/AccelByte/extend-prize-engine/pkg/award"
	awardBuiltin "github.com/AccelByte/extend-prize-engine/pkg/award/builtin"
)

func init() {
	// Register builtin awards for all tests
	awardBuiltin.RegisterAwards(&awardBuiltin.Dependencies{})
}

func TestCreateAward_Builtins(t *testing.T) {
	tests := []struct {
		name     string
		config   award.AwardConfig
		wantName string
	}{
		{
			name:     "grant item",
			config:   award.AwardConfig{ID: "grant", Type: awardBuiltin.GrantItemType, Enabled: true},
			wantName: "Grant Item",
		},
		{
			name: "increment stat",
			config: award.AwardConfig{
				ID: "stat", Type: awardBuiltin.IncrementStatType, Enabled: true,
				Parameters: map[string]interface{}{"stat_code": "prize-wins"},
			},
			wantName: "Increment Statistic",
		},
		{
			name:     "log win",
			config:   award.AwardConfig{ID: "log", Type: awardBuiltin.LogWinType, Enabled: true},
			wantName: "Log Win",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := award.CreateAward(tt.config)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if a == nil {
				t.Fatal("Expected non-nil award")
			}
			if a.ID() != tt.config.ID {
				t.Errorf("Expected ID %s, got %s", tt.config.ID, a.ID())
			}
			if a.Name() != tt.wantName {
				t.Errorf("Expected name %s, got %s", tt.wantName, a.Name())
			}
		})
	}
}

func TestCreateAward_Disabled(t *testing.T) {
	a, err := award.CreateAward(award.AwardConfig{ID: "off", Type: awardBuiltin.LogWinType, Enabled: false})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a != nil {
		t.Error("Expected nil award for disabled config")
	}
}

func TestCreateAward_Errors(t *testing.T) {
	_, err := award.CreateAward(award.AwardConfig{ID: "x", Type: "teleport", Enabled: true})
	if !errors.Is(err, award.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown type, got %v", err)
	}

	_, err = award.CreateAward(award.AwardConfig{ID: "stat", Type: awardBuiltin.IncrementStatType, Enabled: true})
	if !errors.Is(err, award.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for missing stat_code, got %v", err)
	}
}

func TestRegisterAwards(t *testing.T) {
	registry := award.NewRegistry()
	configs := []award.AwardConfig{
		{ID: "grant", Type: awardBuiltin.GrantItemType, Enabled: true},
		{ID: "broken", Type: awardBuiltin.IncrementStatType, Enabled: true},
		{ID: "off", Type: awardBuiltin.LogWinType, Enabled: false},
		{ID: "log", Type: awardBuiltin.LogWinType, Enabled: true},
	}

	if err := award.RegisterAwards(registry, configs); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if registry.Count() != 2 {
		t.Errorf("Expected 2 registered awards, got %d (%v)", registry.Count(), registry.IDs())
	}
	if registry.Get("broken") != nil || registry.Get("off") != nil {
		t.Error("Expected broken and disabled awards to be left out")
	}

	if err := award.RegisterAwards(registry, configs[:1]); err == nil {
		t.Error("Expected error when registering a duplicate award")
	}
}
