// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"context"
	"time"
)

// SessionStore keeps per-session and per-identity attempt counters.
type SessionStore interface {
	// RecordAttempt upserts the session and registers one attempt at the given time.
	// It returns the session with engine-maintained counters filled in.
	RecordAttempt(ctx context.Context, session UserSession, at time.Time) (UserSession, error)

	// AttemptsSince counts attempts of one session at or after since.
	AttemptsSince(ctx context.Context, sessionID string, since time.Time) (int, error)

	// IPAttempts counts attempts from an IP across all sessions.
	IPAttempts(ctx context.Context, ip string) (int, error)

	// UserAttempts counts attempts by a user id across all sessions.
	UserAttempts(ctx context.Context, userID string) (int, error)

	// CampaignAttemptsSince counts attempts of every session at or after since.
	// Implementations may round since down to the start of its minute.
	CampaignAttemptsSince(ctx context.Context, since time.Time) (int, error)

	SessionCount(ctx context.Context) (int, error)
	TotalAttempts(ctx context.Context) (int, error)
}

// UserPrizeRecord summarises one user's wins of one prize.
type UserPrizeRecord struct {
	Count   int
	LastWin time.Time
}

// ClaimStatus is the outcome of an atomic prize claim.
type ClaimStatus string

const (
	ClaimGranted    ClaimStatus = "granted"
	ClaimExhausted  ClaimStatus = "exhausted"
	ClaimDailyCap   ClaimStatus = "daily_cap"
	ClaimHourlyCap  ClaimStatus = "hourly_cap"
	ClaimUserLimit  ClaimStatus = "user_limit"
	ClaimCooldown   ClaimStatus = "cooldown"
	ClaimNotStarted ClaimStatus = "not_started"
	ClaimEnded      ClaimStatus = "ended"
)

// Claim describes a win to be recorded. The store re-checks every limit of
// Prize and records the win only if all of them still hold.
type Claim struct {
	Prize        PrizeDistribution
	Entry        WinHistoryEntry
	DayStart     time.Time
	HistoryLimit int
}

// WinStore keeps prize counters and the bounded win history.
type WinStore interface {
	// WinsSince counts history entries for prizeID at or after since.
	// An empty prizeID counts every prize.
	WinsSince(ctx context.Context, prizeID string, since time.Time) (int, error)

	UserPrizeWins(ctx context.Context, userID, prizeID string) (UserPrizeRecord, error)

	PrizeWinners(ctx context.Context, prizeID string) (int, error)

	// SeedWinners initialises a prize counter only if it does not exist yet.
	SeedWinners(ctx context.Context, prizeID string, winners int) error

	// Claim atomically checks inventory, caps and cooldown for the prize and,
	// when all hold, increments the prize counter, the session win count and
	// the user's prize record, and appends the history entry trimmed to
	// HistoryLimit.
	Claim(ctx context.Context, claim Claim) (ClaimStatus, error)

	// History returns the retained entries, oldest first.
	History(ctx context.Context) ([]WinHistoryEntry, error)

	TotalWins(ctx context.Context) (int, error)
}

// Store is everything the engine persists.
type Store interface {
	SessionStore
	WinStore
}

// Catalog resolves display metadata for a prize id.
// Implementations return ErrPrizeNotFound for unknown ids.
type Catalog interface {
	Lookup(ctx context.Context, prizeID string) (Prize, error)
}
