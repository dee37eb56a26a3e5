package award

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// AwardFactory creates an award from a configuration.
type AwardFactory func(config AwardConfig) (Award, error)

var factories = make(map[string]AwardFactory)

// RegisterAwardType registers a factory function for an award type.
func RegisterAwardType(awardType string, factory AwardFactory) {
	factories[awardType] = factory
	logrus.Debugf("registered award type: %s", awardType)
}

// CreateAward creates an award instance based on the configuration.
// Disabled awards yield (nil, nil).
func CreateAward(config AwardConfig) (Award, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled award: %s", config.ID)
		return nil, nil
	}

	factory, exists := factories[config.Type]
	if !exists {
		return nil, fmt.Errorf("%w: unknown award type %q", ErrInvalidConfig, config.Type)
	}

	logrus.Infof("creating award: id=%s, type=%s", config.ID, config.Type)
	return factory(config)
}

// CreateAwards creates every configured award and collects the failures.
func CreateAwards(configs []AwardConfig) ([]Award, []error) {
	var awards []Award
	var errs []error

	for _, config := range configs {
		a, err := CreateAward(config)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create award %s: %w", config.ID, err))
			continue
		}

		if a != nil {
			awards = append(awards, a)
		}
	}

	return awards, errs
}

// RegisterAwards creates the configured awards and adds them to registry.
// Awards that fail to build are logged and left out.
func RegisterAwards(registry *Registry, configs []AwardConfig) error {
	awards, errs := CreateAwards(configs)

	for _, err := range errs {
		logrus.Warnf("award creation error: %v", err)
	}

	for _, a := range awards {
		if err := registry.Register(a); err != nil {
			return fmt.Errorf("failed to register award %s: %w", a.ID(), err)
		}
	}

	logrus.Infof("registered %d awards", len(awards))
	return nil
}
