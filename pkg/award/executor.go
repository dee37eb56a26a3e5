package award

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Award statuses reported to the Observer.
const (
	StatusSuccess    = "success"
	StatusFailed     = "failed"
	StatusRolledBack = "rolled_back"
)

// Observer is notified of every award outcome.
type Observer interface {
	ObserveAward(awardID, status string)
}

// Executor runs awards for winning results.
type Executor struct {
	registry *Registry
	observer Observer
}

// NewExecutor creates a new award executor. observer may be nil.
func NewExecutor(registry *Registry, observer Observer) *Executor {
	return &Executor{
		registry: registry,
		observer: observer,
	}
}

// Execute runs a single award.
func (e *Executor) Execute(ctx context.Context, awardID string, event *WinEvent) (*AwardResult, error) {
	a := e.registry.Get(awardID)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrAwardNotFound, awardID)
	}

	if err := e.run(ctx, a, event); err != nil {
		return NewAwardError(awardID, err), err
	}
	return NewAwardResult(awardID), nil
}

// ExecuteMultiple executes awards in sequence and stops at the first failure.
// If rollbackOnError is true, the awards that already ran are rolled back in reverse order.
func (e *Executor) ExecuteMultiple(ctx context.Context, awardIDs []string, event *WinEvent, rollbackOnError bool) ([]*AwardResult, error) {
	var results []*AwardResult
	var executed []Award

	for _, awardID := range awardIDs {
		a := e.registry.Get(awardID)
		if a == nil {
			err := fmt.Errorf("%w: %s", ErrAwardNotFound, awardID)
			logrus.Errorf("%v", err)
			results = append(results, NewAwardError(awardID, err))

			if rollbackOnError && len(executed) > 0 {
				e.rollback(ctx, executed, results, event)
			}
			return results, err
		}

		if err := e.run(ctx, a, event); err != nil {
			results = append(results, NewAwardError(awardID, err))

			if rollbackOnError && len(executed) > 0 {
				e.rollback(ctx, executed, results, event)
			}
			return results, err
		}

		executed = append(executed, a)
		results = append(results, NewAwardResult(awardID))
	}

	return results, nil
}

func (e *Executor) run(ctx context.Context, a Award, event *WinEvent) error {
	log := logrus.WithFields(logrus.Fields{
		"award":    a.ID(),
		"draw_id":  event.DrawID,
		"prize_id": event.Prize.ID,
		"user_id":  event.UserID,
	})

	log.Debug("executing award")
	if err := a.Execute(ctx, event); err != nil {
		log.WithError(err).Error("award failed")
		e.observe(a.ID(), StatusFailed)
		return err
	}

	e.observe(a.ID(), StatusSuccess)
	return nil
}

// rollback undoes awards in reverse order and marks the matching results.
func (e *Executor) rollback(ctx context.Context, awards []Award, results []*AwardResult, event *WinEvent) {
	logrus.Warnf("rolling back %d awards for draw %s", len(awards), event.DrawID)

	for i := len(awards) - 1; i >= 0; i-- {
		a := awards[i]

		err := a.Rollback(ctx, event)
		switch {
		case errors.Is(err, ErrRollbackNotSupported):
			logrus.Warnf("award %s does not support rollback", a.ID())
		case err != nil:
			logrus.Errorf("failed to rollback award %s: %v", a.ID(), err)
		default:
			results[i].WithMetadata("rolled_back", true)
			e.observe(a.ID(), StatusRolledBack)
		}
	}
}

func (e *Executor) observe(awardID, status string) {
	if e.observer != nil {
		e.observer.ObserveAward(awardID, status)
	}
}

// Registry returns the award registry used by this executor.
func (e *Executor) Registry() *Registry {
	return e.registry
}
