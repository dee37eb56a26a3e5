package campaign

import (
	"fmt"
	"os"
	"strings"

	"github.com/AccelByte/extend-prize-engine/pkg/award"
	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/AccelByte/extend-prize-engine/pkg/risk"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the complete campaign file.
type Config struct {
	CampaignID         string                `yaml:"campaign_id"`
	GlobalWinRate      float64               `yaml:"global_win_rate"`
	DynamicProbability bool                  `yaml:"dynamic_probability"`
	FairnessMode       prize.FairnessMode    `yaml:"fairness_mode"`
	HistoryLimit       int                   `yaml:"history_limit,omitempty"`
	Antifraud          prize.AntifraudConfig `yaml:"antifraud"`
	Prizes             []PrizeEntry          `yaml:"prizes"`
	RiskScorers        []risk.ScorerConfig   `yaml:"risk_scorers,omitempty"`
	Awards             []award.AwardConfig   `yaml:"awards,omitempty"`
	OnWin              []string              `yaml:"on_win,omitempty"` // Award IDs run after every win
	RollbackOnError    bool                  `yaml:"rollback_on_error,omitempty"`
}

// PrizeEntry is one prize: its allocation rules plus what the winner sees.
type PrizeEntry struct {
	prize.PrizeDistribution `yaml:",inline"`
	Display                 PrizeDisplay `yaml:"display"`
}

// PrizeDisplay holds the catalog fields of a prize.
type PrizeDisplay struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Value       string            `yaml:"value"`
	Currency    string            `yaml:"currency,omitempty"`
	ImageURL    string            `yaml:"image_url,omitempty"`
	ItemID      string            `yaml:"item_id,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// LoadConfig loads a campaign from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes and validates campaign YAML.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse campaign YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid campaign: %w", err)
	}

	return &config, nil
}

// Validate validates the campaign for common errors.
func (c *Config) Validate() error {
	engineCfg := c.ToEngineConfig()
	if err := engineCfg.Validate(); err != nil {
		return err
	}

	for _, p := range c.Prizes {
		if p.Display.Name == "" {
			return fmt.Errorf("prize %s has no display name", p.PrizeID)
		}
		if _, err := parseValue(p.Display.Value); err != nil {
			return fmt.Errorf("prize %s: %w", p.PrizeID, err)
		}
	}

	scorerIDs := make(map[string]bool)
	for _, s := range c.RiskScorers {
		if s.ID == "" {
			return fmt.Errorf("risk scorer with empty ID found")
		}
		if scorerIDs[s.ID] {
			return fmt.Errorf("duplicate risk scorer ID: %s", s.ID)
		}
		scorerIDs[s.ID] = true

		if s.Type == "" {
			return fmt.Errorf("risk scorer %s has empty type", s.ID)
		}
	}

	awardIDs := make(map[string]bool)
	for _, a := range c.Awards {
		if a.ID == "" {
			return fmt.Errorf("award with empty ID found")
		}
		if awardIDs[a.ID] {
			return fmt.Errorf("duplicate award ID: %s", a.ID)
		}
		awardIDs[a.ID] = true

		if a.Type == "" {
			return fmt.Errorf("award %s has empty type", a.ID)
		}
	}

	for _, id := range c.OnWin {
		if !awardIDs[id] {
			return fmt.Errorf("on_win references unknown award: %s", id)
		}
	}

	return nil
}

// ToEngineConfig extracts the allocation part of the campaign.
func (c *Config) ToEngineConfig() prize.EngineConfig {
	prizes := make([]prize.PrizeDistribution, 0, len(c.Prizes))
	for _, p := range c.Prizes {
		prizes = append(prizes, p.PrizeDistribution)
	}

	return prize.EngineConfig{
		CampaignID:         c.CampaignID,
		Prizes:             prizes,
		Antifraud:          c.Antifraud,
		GlobalWinRate:      c.GlobalWinRate,
		DynamicProbability: c.DynamicProbability,
		FairnessMode:       c.FairnessMode,
		HistoryLimit:       c.HistoryLimit,
	}.Clone()
}

// CatalogEntries returns the display side of every prize for catalog seeding.
func (c *Config) CatalogEntries() ([]prize.Prize, error) {
	entries := make([]prize.Prize, 0, len(c.Prizes))
	for _, p := range c.Prizes {
		value, err := parseValue(p.Display.Value)
		if err != nil {
			return nil, fmt.Errorf("prize %s: %w", p.PrizeID, err)
		}

		entries = append(entries, prize.Prize{
			ID:          p.PrizeID,
			Name:        p.Display.Name,
			Description: p.Display.Description,
			Value:       value,
			Currency:    p.Display.Currency,
			ImageURL:    p.Display.ImageURL,
			ItemID:      p.Display.ItemID,
			Metadata:    p.Display.Metadata,
		})
	}
	return entries, nil
}

// ValidateWiring checks that every enabled award and every on_win reference
// has a registered instance. This catches unregistered award types and typos.
func (c *Config) ValidateWiring(awardRegistry *award.Registry) error {
	var problems []string

	for _, ac := range c.Awards {
		if !ac.Enabled {
			continue
		}
		if awardRegistry.Get(ac.ID) == nil {
			problems = append(problems, fmt.Sprintf("award '%s' (type=%s) is enabled in config but not registered", ac.ID, ac.Type))
		}
	}

	for _, id := range c.OnWin {
		if awardRegistry.Get(id) == nil {
			problems = append(problems, fmt.Sprintf("on_win award '%s' is not registered (disabled or failed to build)", id))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("campaign wiring validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}

	return nil
}

func parseValue(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid value %q: %w", s, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative value %s", s)
	}
	return v, nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(parts[0]); value != "" {
			return value
		}
		return defaultValue
	})
}
