// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionTracker is the only writer of attempt counters. Antifraud and
// fairness read aggregates through it.
type SessionTracker struct {
	store SessionStore
	wins  WinStore
	clock Clock
}

// NewSessionTracker creates a tracker over the given store.
func NewSessionTracker(store Store, clock Clock) *SessionTracker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SessionTracker{store: store, wins: store, clock: clock}
}

// Update records one attempt for the session and returns the tracked snapshot.
// The first sighting starts at attempts=1, wins=0.
func (t *SessionTracker) Update(ctx context.Context, session UserSession) (UserSession, error) {
	if session.SessionID == "" {
		return UserSession{}, ErrInvalidSession
	}

	now := t.clock.Now()
	tracked, err := t.store.RecordAttempt(ctx, session, now)
	if err != nil {
		return UserSession{}, fmt.Errorf("%w: record attempt for session %s: %v", ErrStoreUnavailable, session.SessionID, err)
	}

	logrus.Debugf("tracked session %s: attempts=%d wins=%d", tracked.SessionID, tracked.Attempts, tracked.Wins)
	return tracked, nil
}

// AttemptsWithin counts attempts of a session in the trailing window.
func (t *SessionTracker) AttemptsWithin(ctx context.Context, sessionID string, window time.Duration) (int, error) {
	n, err := t.store.AttemptsSince(ctx, sessionID, t.clock.Now().Add(-window))
	if err != nil {
		return 0, fmt.Errorf("%w: session attempts: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

// IPAttempts counts attempts from an IP across all sessions.
func (t *SessionTracker) IPAttempts(ctx context.Context, ip string) (int, error) {
	n, err := t.store.IPAttempts(ctx, ip)
	if err != nil {
		return 0, fmt.Errorf("%w: ip attempts: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

// UserAttempts counts attempts by a user id across all sessions.
func (t *SessionTracker) UserAttempts(ctx context.Context, userID string) (int, error) {
	n, err := t.store.UserAttempts(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: user attempts: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

// RecentWinRate returns campaign wins divided by campaign attempts over the
// trailing window. It is 0 when there were no attempts.
// Attempts are bucketed per minute, so the denominator may include up to 59
// seconds before the window while wins are counted exactly. Over the
// balanced-mode window this biases the rate slightly low.
func (t *SessionTracker) RecentWinRate(ctx context.Context, window time.Duration) (float64, error) {
	since := t.clock.Now().Add(-window)

	attempts, err := t.store.CampaignAttemptsSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("%w: campaign attempts: %v", ErrStoreUnavailable, err)
	}
	if attempts == 0 {
		return 0, nil
	}

	wins, err := t.wins.WinsSince(ctx, "", since)
	if err != nil {
		return 0, fmt.Errorf("%w: recent wins: %v", ErrStoreUnavailable, err)
	}

	return float64(wins) / float64(attempts), nil
}
