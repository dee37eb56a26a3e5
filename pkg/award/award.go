package award

import (
	"context"
	"errors"
	"time"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"
)

// Award is a post-win action such as granting the prize item to the winner.
// Awards are registered in a Registry and executed by the Executor.
type Award interface {
	// ID returns unique award identifier.
	ID() string

	// Name returns human-readable award name.
	Name() string

	// Execute delivers the award for a single win.
	Execute(ctx context.Context, event *WinEvent) error

	// Rollback undoes Execute, or returns ErrRollbackNotSupported.
	Rollback(ctx context.Context, event *WinEvent) error

	// Config returns the award's configuration.
	Config() AwardConfig
}

// WinEvent describes one granted prize.
type WinEvent struct {
	CampaignID string
	DrawID     string
	SessionID  string
	UserID     string
	Prize      prize.Prize
	Timestamp  time.Time
}

// NewWinEvent builds the event for a winning result.
func NewWinEvent(result *prize.PrizeResult, session prize.UserSession) (*WinEvent, error) {
	if result == nil || !result.HasWon || result.Prize == nil {
		return nil, errors.New("result is not a win")
	}

	return &WinEvent{
		CampaignID: result.Metadata.CampaignID,
		DrawID:     result.Metadata.DrawID,
		SessionID:  session.SessionID,
		UserID:     session.UserID,
		Prize:      *result.Prize,
		Timestamp:  result.Metadata.Timestamp,
	}, nil
}

// AwardResult represents the outcome of an award execution.
type AwardResult struct {
	AwardID  string
	Success  bool
	Error    error
	Metadata map[string]interface{}
}

// NewAwardResult creates a successful award result.
func NewAwardResult(awardID string) *AwardResult {
	return &AwardResult{
		AwardID:  awardID,
		Success:  true,
		Metadata: make(map[string]interface{}),
	}
}

// NewAwardError creates a failed award result with an error.
func NewAwardError(awardID string, err error) *AwardResult {
	return &AwardResult{
		AwardID:  awardID,
		Success:  false,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// WithMetadata adds metadata to the result and returns it for chaining.
func (r *AwardResult) WithMetadata(key string, value interface{}) *AwardResult {
	r.Metadata[key] = value
	return r
}
