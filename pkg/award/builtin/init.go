package builtin

import (
	"github.com/AccelByte/extend-prize-engine/pkg/award"
	"github.com/AccelByte/extend-prize-engine/pkg/service"
)

// Dependencies holds the fulfillment backends used by built-in awards.
// Nil backends put the matching award in dry-run mode.
type Dependencies struct {
	EntitlementGranter service.EntitlementGranter
	StatIncrementer    service.StatIncrementer
}

// RegisterAwards registers built-in award factories with dependencies.
func RegisterAwards(deps *Dependencies) {
	if deps == nil {
		deps = &Dependencies{}
	}

	award.RegisterAwardType(GrantItemType, func(config award.AwardConfig) (award.Award, error) {
		return NewGrantItemAward(config, deps.EntitlementGranter), nil
	})

	award.RegisterAwardType(IncrementStatType, func(config award.AwardConfig) (award.Award, error) {
		return NewIncrementStatAward(config, deps.StatIncrementer)
	})

	award.RegisterAwardType(LogWinType, func(config award.AwardConfig) (award.Award, error) {
		return NewLogWinAward(config), nil
	})
}
