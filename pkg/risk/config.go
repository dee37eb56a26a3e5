package risk

import "strings"

// ScorerConfig is the configuration of one risk scorer.
// This is typically loaded from the campaign YAML.
type ScorerConfig struct {
	ID         string                 `yaml:"id" json:"id"`
	Type       string                 `yaml:"type" json:"type"` // e.g., "device_blocklist"
	Enabled    bool                   `yaml:"enabled" json:"enabled"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters"`
}

// GetFloat retrieves a float value from parameters with a default.
// Integer values are accepted since YAML decodes "1" as an int.
func (c *ScorerConfig) GetFloat(key string, defaultValue float64) float64 {
	switch v := c.Parameters[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return defaultValue
}

// GetString retrieves a string value from parameters with a default.
func (c *ScorerConfig) GetString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetStringSlice retrieves a string list from parameters.
// Both []string and the []interface{} produced by YAML are handled.
func (c *ScorerConfig) GetStringSlice(key string) []string {
	switch v := c.Parameters[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// GetStringSet retrieves a string list as a set, normalized with normalize
// when it is non-nil.
func (c *ScorerConfig) GetStringSet(key string, normalize func(string) string) map[string]bool {
	set := make(map[string]bool)
	for _, s := range c.GetStringSlice(key) {
		if normalize != nil {
			s = normalize(s)
		}
		set[s] = true
	}
	return set
}

// Upper is a GetStringSet normalizer for country codes.
func Upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
