// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "prize_engine"

// Decision outcomes.
const (
	OutcomeWin       = "win"
	OutcomeLoss      = "loss"
	OutcomeAntifraud = "antifraud"
	OutcomeNoPrize   = "no_prize"
	OutcomeError     = "error"
)

// Metrics holds the application collectors. Register them with Collectors().
type Metrics struct {
	DecisionsTotal   *prometheus.CounterVec
	AwardActions     *prometheus.CounterVec
	DecisionDuration prometheus.Histogram
	PrizeRemaining   *prometheus.GaugeVec
}

// New creates unregistered collectors.
func New() *Metrics {
	return &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Total number of prize decisions by outcome",
			},
			[]string{"campaign", "outcome"},
		),
		AwardActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "award_actions_total",
				Help:      "Total number of post-win award executions by status",
			},
			[]string{"action", "status"},
		),
		DecisionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decision_duration_seconds",
				Help:      "Latency of DeterminePrize",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
		),
		PrizeRemaining: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "prize_remaining",
				Help:      "Remaining inventory per prize, refreshed on stats reads",
			},
			[]string{"campaign", "prize"},
		),
	}
}

// Collectors returns every collector for registry.MustRegister.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.DecisionsTotal, m.AwardActions, m.DecisionDuration, m.PrizeRemaining}
}

// Outcome classifies a decision.
func Outcome(result prize.PrizeResult, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case result.HasWon:
		return OutcomeWin
	case result.Reason == prize.ReasonAntifraud:
		return OutcomeAntifraud
	case result.Reason == prize.ReasonNoPrizes:
		return OutcomeNoPrize
	}
	return OutcomeLoss
}

// ObserveDecision records one DeterminePrize call.
func (m *Metrics) ObserveDecision(campaignID string, result prize.PrizeResult, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(campaignID, Outcome(result, err)).Inc()
	m.DecisionDuration.Observe(took.Seconds())
}

// ObserveAward implements award.Observer.
func (m *Metrics) ObserveAward(awardID, status string) {
	if m == nil {
		return
	}
	m.AwardActions.WithLabelValues(awardID, status).Inc()
}

// ObserveInventory refreshes the remaining-inventory gauge.
func (m *Metrics) ObserveInventory(stats prize.EngineStats) {
	if m == nil {
		return
	}
	for _, inv := range stats.PrizeInventory {
		m.PrizeRemaining.WithLabelValues(stats.CampaignID, inv.PrizeID).Set(float64(inv.Remaining))
	}
}
