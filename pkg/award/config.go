package award

// AwardConfig is the base configuration for all awards, loaded from the campaign file.
type AwardConfig struct {
	ID         string                 `yaml:"id" json:"id"`
	Name       string                 `yaml:"name" json:"name"`
	Type       string                 `yaml:"type" json:"type"` // e.g., "grant_item"
	Enabled    bool                   `yaml:"enabled" json:"enabled"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters"`
}

// GetParameterInt retrieves an integer parameter with a default.
// Whole float values are accepted since JSON decodes numbers as float64.
func (c *AwardConfig) GetParameterInt(key string, defaultValue int) int {
	switch v := c.Parameters[key].(type) {
	case int:
		return v
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return defaultValue
}

// GetParameterFloat retrieves a float parameter with a default.
func (c *AwardConfig) GetParameterFloat(key string, defaultValue float64) float64 {
	switch v := c.Parameters[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return defaultValue
}

// GetParameterString retrieves a string parameter with a default.
func (c *AwardConfig) GetParameterString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetParameterBool retrieves a boolean parameter with a default.
func (c *AwardConfig) GetParameterBool(key string, defaultValue bool) bool {
	if val, ok := c.Parameters[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}
