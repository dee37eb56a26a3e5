package builtin

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-prize-engine/pkg/award"
	"github.com/AccelByte/extend-prize-engine/pkg/service"
	"github.com/sirupsen/logrus"
)

const (
	// IncrementStatType is the identifier for the stat increment award
	IncrementStatType = "increment_stat"
)

// IncrementStatAward bumps a player statistic for every win.
type IncrementStatAward struct {
	config      award.AwardConfig
	incrementer service.StatIncrementer
	statCode    string
	inc         float64
}

// NewIncrementStatAward creates a stat award. stat_code is required.
func NewIncrementStatAward(config award.AwardConfig, incrementer service.StatIncrementer) (*IncrementStatAward, error) {
	statCode := config.GetParameterString("stat_code", "")
	if statCode == "" {
		return nil, fmt.Errorf("%w: stat_code is required", award.ErrInvalidConfig)
	}

	return &IncrementStatAward{
		config:      config,
		incrementer: incrementer,
		statCode:    statCode,
		inc:         config.GetParameterFloat("inc", 1),
	}, nil
}

func (a *IncrementStatAward) ID() string {
	return a.config.ID
}

func (a *IncrementStatAward) Name() string {
	return "Increment Statistic"
}

func (a *IncrementStatAward) Config() award.AwardConfig {
	return a.config
}

func (a *IncrementStatAward) Execute(ctx context.Context, event *award.WinEvent) error {
	return a.apply(ctx, event, a.inc)
}

// Rollback applies the negated increment.
func (a *IncrementStatAward) Rollback(ctx context.Context, event *award.WinEvent) error {
	return a.apply(ctx, event, -a.inc)
}

func (a *IncrementStatAward) apply(ctx context.Context, event *award.WinEvent, inc float64) error {
	if event.UserID == "" {
		return fmt.Errorf("cannot update stat %s: anonymous winner", a.statCode)
	}

	if a.incrementer == nil {
		logrus.Warnf("[DRY RUN] would increment stat %s by %v for user %s", a.statCode, inc, event.UserID)
		return nil
	}

	return a.incrementer.IncrementStat(ctx, event.UserID, a.statCode, inc)
}
