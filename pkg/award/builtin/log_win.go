package builtin

import (
	"context"

	"github.com/AccelByte/extend-prize-engine/pkg/award"
	"github.com/sirupsen/logrus"
)

const (
	// LogWinType is the identifier for the win log award
	LogWinType = "log_win"
)

// LogWinAward writes one structured log line per win.
type LogWinAward struct {
	config award.AwardConfig
	level  logrus.Level
}

// NewLogWinAward creates a log award. The level parameter defaults to info.
func NewLogWinAward(config award.AwardConfig) *LogWinAward {
	level, err := logrus.ParseLevel(config.GetParameterString("level", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	return &LogWinAward{config: config, level: level}
}

func (a *LogWinAward) ID() string                { return a.config.ID }
func (a *LogWinAward) Name() string              { return "Log Win" }
func (a *LogWinAward) Config() award.AwardConfig { return a.config }

func (a *LogWinAward) Execute(ctx context.Context, event *award.WinEvent) error {
	logrus.WithFields(logrus.Fields{
		"campaign_id": event.CampaignID,
		"draw_id":     event.DrawID,
		"session_id":  event.SessionID,
		"user_id":     event.UserID,
		"prize_id":    event.Prize.ID,
		"prize_value": event.Prize.Value.String(),
		"won_at":      event.Timestamp,
	}).Log(a.level, "prize won")
	return nil
}

func (a *LogWinAward) Rollback(ctx context.Context, event *award.WinEvent) error {
	return award.ErrRollbackNotSupported
}
