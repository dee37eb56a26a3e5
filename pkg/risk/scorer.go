package risk

import (
	"context"
	"math"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"
)

// Scorer is a configured risk check. Concrete scorers also implement
// prize.DeviceRiskScorer or prize.GeoRiskScorer.
type Scorer interface {
	// ID returns the unique scorer identifier.
	ID() string

	// Config returns the scorer's configuration.
	Config() ScorerConfig
}

// MaxDeviceScorer combines device scorers by taking the highest score.
type MaxDeviceScorer []prize.DeviceRiskScorer

// ScoreDevice implements prize.DeviceRiskScorer.
func (m MaxDeviceScorer) ScoreDevice(ctx context.Context, session prize.UserSession) (float64, error) {
	var best float64
	for _, s := range m {
		score, err := s.ScoreDevice(ctx, session)
		if err != nil {
			return 0, err
		}
		best = math.Max(best, score)
	}
	return math.Min(1, best), nil
}

// MaxGeoScorer combines geo scorers by taking the highest score.
type MaxGeoScorer []prize.GeoRiskScorer

// ScoreGeo implements prize.GeoRiskScorer.
func (m MaxGeoScorer) ScoreGeo(ctx context.Context, session prize.UserSession) (float64, error) {
	var best float64
	for _, s := range m {
		score, err := s.ScoreGeo(ctx, session)
		if err != nil {
			return 0, err
		}
		best = math.Max(best, score)
	}
	return math.Min(1, best), nil
}

// Combine splits scorers by kind. A kind without scorers is returned as nil so
// the engine falls back to its no-op default.
func Combine(scorers []Scorer) (prize.DeviceRiskScorer, prize.GeoRiskScorer) {
	var device MaxDeviceScorer
	var geo MaxGeoScorer

	for _, s := range scorers {
		if d, ok := s.(prize.DeviceRiskScorer); ok {
			device = append(device, d)
		}
		if g, ok := s.(prize.GeoRiskScorer); ok {
			geo = append(geo, g)
		}
	}

	var d prize.DeviceRiskScorer
	var g prize.GeoRiskScorer
	if len(device) > 0 {
		d = device
	}
	if len(geo) > 0 {
		g = geo
	}
	return d, g
}
