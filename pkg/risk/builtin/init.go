package builtin

import (
	"github.com/AccelByte/extend-prize-engine/pkg/risk"
)

// RegisterBuiltinScorers registers all built-in scorer types with the factory.
func RegisterBuiltinScorers() {
	risk.RegisterScorerType(DeviceBlocklistType, func(config risk.ScorerConfig) (risk.Scorer, error) {
		return NewDeviceBlocklistScorer(config), nil
	})

	risk.RegisterScorerType(DeviceMissingType, func(config risk.ScorerConfig) (risk.Scorer, error) {
		return NewDeviceMissingScorer(config), nil
	})

	risk.RegisterScorerType(UserAgentPatternType, func(config risk.ScorerConfig) (risk.Scorer, error) {
		return NewUserAgentPatternScorer(config)
	})

	risk.RegisterScorerType(GeoCountryDenylistType, func(config risk.ScorerConfig) (risk.Scorer, error) {
		return NewGeoCountryDenylistScorer(config)
	})

	risk.RegisterScorerType(GeoMissingType, func(config risk.ScorerConfig) (risk.Scorer, error) {
		return NewGeoMissingScorer(config), nil
	})
}
