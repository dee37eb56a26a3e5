package risk

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ScorerFactory is a function that creates a scorer from a configuration.
type ScorerFactory func(config ScorerConfig) (Scorer, error)

// factories stores registered scorer factories by type
var factories = make(map[string]ScorerFactory)

// RegisterScorerType registers a factory function for a scorer type.
func RegisterScorerType(scorerType string, factory ScorerFactory) {
	factories[scorerType] = factory
	logrus.Debugf("registered risk scorer type: %s", scorerType)
}

// CreateScorer creates a scorer instance based on the configuration.
// Disabled scorers return nil without error.
func CreateScorer(config ScorerConfig) (Scorer, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled risk scorer: %s", config.ID)
		return nil, nil
	}

	factory, exists := factories[config.Type]
	if !exists {
		return nil, fmt.Errorf("unknown risk scorer type: %s", config.Type)
	}

	logrus.Infof("creating risk scorer: id=%s, type=%s", config.ID, config.Type)
	return factory(config)
}

// CreateScorers creates every enabled scorer and stops at the first error.
func CreateScorers(configs []ScorerConfig) ([]Scorer, error) {
	var scorers []Scorer
	for _, config := range configs {
		s, err := CreateScorer(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create risk scorer %s: %w", config.ID, err)
		}
		if s != nil {
			scorers = append(scorers, s)
		}
	}

	logrus.Infof("created %d risk scorers", len(scorers))
	return scorers, nil
}

// IsRegistered reports whether a scorer type has a factory.
func IsRegistered(scorerType string) bool {
	_, ok := factories[scorerType]
	return ok
}
