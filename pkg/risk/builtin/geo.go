package builtin

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/AccelByte/extend-prize-engine/pkg/risk"
	"github.com/sirupsen/logrus"
)

const (
	GeoCountryDenylistType = "geo_country_denylist"
	GeoMissingType         = "geo_missing"

	// DefaultMissingGeoScore is used when geo_missing has no score parameter
	DefaultMissingGeoScore = 0.5
)

// GeoCountryDenylistScorer flags sessions from denied countries.
type GeoCountryDenylistScorer struct {
	config    risk.ScorerConfig
	countries map[string]bool
}

// NewGeoCountryDenylistScorer reads the "countries" parameter (ISO codes).
func NewGeoCountryDenylistScorer(config risk.ScorerConfig) (*GeoCountryDenylistScorer, error) {
	countries := config.GetStringSet("countries", risk.Upper)
	if len(countries) == 0 {
		return nil, fmt.Errorf("geo_country_denylist scorer %s requires countries", config.ID)
	}

	logrus.Infof("creating geo denylist scorer with %d countries", len(countries))
	return &GeoCountryDenylistScorer{config: config, countries: countries}, nil
}

func (s *GeoCountryDenylistScorer) ID() string                { return s.config.ID }
func (s *GeoCountryDenylistScorer) Config() risk.ScorerConfig { return s.config }

func (s *GeoCountryDenylistScorer) ScoreGeo(ctx context.Context, session prize.UserSession) (float64, error) {
	if session.Geolocation == nil {
		return 0, nil
	}
	if s.countries[risk.Upper(session.Geolocation.Country)] {
		return 1, nil
	}
	return 0, nil
}

// GeoMissingScorer penalizes sessions without geolocation.
type GeoMissingScorer struct {
	config risk.ScorerConfig
	score  float64
}

func NewGeoMissingScorer(config risk.ScorerConfig) *GeoMissingScorer {
	return &GeoMissingScorer{
		config: config,
		score:  config.GetFloat("score", DefaultMissingGeoScore),
	}
}

func (s *GeoMissingScorer) ID() string                { return s.config.ID }
func (s *GeoMissingScorer) Config() risk.ScorerConfig { return s.config }

func (s *GeoMissingScorer) ScoreGeo(ctx context.Context, session prize.UserSession) (float64, error) {
	if session.Geolocation == nil || session.Geolocation.Country == "" {
		return s.score, nil
	}
	return 0, nil
}
