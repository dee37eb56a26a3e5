// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import (
	"context"
	"sync"
	"time"
)

const (
	// attemptRetention bounds how far back per-session attempt times are kept.
	attemptRetention = time.Hour
	// maxTrackedAttempts bounds the per-session attempt times slice.
	maxTrackedAttempts = 256
	// bucketRetention bounds the campaign-wide per-minute buckets.
	bucketRetention = 2 * time.Hour
	// winRetention bounds the win log used for caps and recent win rate.
	// It must cover a full UTC day plus the trailing hour.
	winRetention = 48 * time.Hour
)

type winStamp struct {
	prizeID string
	at      time.Time
}

type memSession struct {
	session  UserSession
	attempts []time.Time
}

// MemoryStore is a process-local Store. All state lives behind a single mutex,
// which also makes Claim atomic. State is lost on restart.
type MemoryStore struct {
	mu sync.Mutex

	sessions      map[string]*memSession
	ipAttempts    map[string]int
	userAttempts  map[string]int
	minuteBuckets map[int64]int
	totalAttempts int

	winners   map[string]int
	userPrize map[string]UserPrizeRecord
	history   []WinHistoryEntry
	winLog    []winStamp
	totalWins int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:      make(map[string]*memSession),
		ipAttempts:    make(map[string]int),
		userAttempts:  make(map[string]int),
		minuteBuckets: make(map[int64]int),
		winners:       make(map[string]int),
		userPrize:     make(map[string]UserPrizeRecord),
	}
}

func userPrizeKey(userID, prizeID string) string {
	return userID + "\x00" + prizeID
}

// RecordAttempt implements SessionStore.
func (m *MemoryStore) RecordAttempt(ctx context.Context, session UserSession, at time.Time) (UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[session.SessionID]
	if !ok {
		rec = &memSession{session: session}
		rec.session.Attempts = 0
		rec.session.Wins = 0
		rec.session.FirstAttempt = at
		m.sessions[session.SessionID] = rec
	} else {
		mergeIdentity(&rec.session, session)
	}

	rec.session.Attempts++
	rec.session.LastAttempt = at
	rec.attempts = append(pruneTimes(rec.attempts, at.Add(-attemptRetention)), at)
	if len(rec.attempts) > maxTrackedAttempts {
		rec.attempts = rec.attempts[len(rec.attempts)-maxTrackedAttempts:]
	}

	if session.IPAddress != "" {
		m.ipAttempts[session.IPAddress]++
	}
	if session.UserID != "" {
		m.userAttempts[session.UserID]++
	}

	minute := at.Unix() / 60
	m.minuteBuckets[minute]++
	cutoff := at.Add(-bucketRetention).Unix() / 60
	for k := range m.minuteBuckets {
		if k < cutoff {
			delete(m.minuteBuckets, k)
		}
	}
	m.totalAttempts++

	return rec.session, nil
}

// mergeIdentity refreshes identity fields with any non-empty incoming values.
func mergeIdentity(dst *UserSession, src UserSession) {
	if src.UserID != "" {
		dst.UserID = src.UserID
	}
	if src.IPAddress != "" {
		dst.IPAddress = src.IPAddress
	}
	if src.UserAgent != "" {
		dst.UserAgent = src.UserAgent
	}
	if src.DeviceFingerprint != "" {
		dst.DeviceFingerprint = src.DeviceFingerprint
	}
	if src.Geolocation != nil {
		geo := *src.Geolocation
		dst.Geolocation = &geo
	}
}

func pruneTimes(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && times[i].Before(cutoff) {
		i++
	}
	return times[i:]
}

// AttemptsSince implements SessionStore.
func (m *MemoryStore) AttemptsSince(ctx context.Context, sessionID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[sessionID]
	if !ok {
		return 0, nil
	}

	count := 0
	for _, t := range rec.attempts {
		if !t.Before(since) {
			count++
		}
	}
	return count, nil
}

// IPAttempts implements SessionStore.
func (m *MemoryStore) IPAttempts(ctx context.Context, ip string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ipAttempts[ip], nil
}

// UserAttempts implements SessionStore.
func (m *MemoryStore) UserAttempts(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userAttempts[userID], nil
}

// CampaignAttemptsSince implements SessionStore with minute granularity: since
// is rounded down to the start of its minute, so the count can include up to
// 59 seconds of attempts before it.
func (m *MemoryStore) CampaignAttemptsSince(ctx context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := since.Unix() / 60
	count := 0
	for minute, n := range m.minuteBuckets {
		if minute >= from {
			count += n
		}
	}
	return count, nil
}

// SessionCount implements SessionStore.
func (m *MemoryStore) SessionCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), nil
}

// TotalAttempts implements SessionStore.
func (m *MemoryStore) TotalAttempts(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalAttempts, nil
}

// WinsSince implements WinStore. Counts come from the win log, which keeps
// the last two days regardless of the history limit.
func (m *MemoryStore) WinsSince(ctx context.Context, prizeID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winsSinceLocked(prizeID, since), nil
}

func (m *MemoryStore) winsSinceLocked(prizeID string, since time.Time) int {
	count := 0
	for _, w := range m.winLog {
		if w.at.Before(since) {
			continue
		}
		if prizeID == "" || w.prizeID == prizeID {
			count++
		}
	}
	return count
}

// UserPrizeWins implements WinStore.
func (m *MemoryStore) UserPrizeWins(ctx context.Context, userID, prizeID string) (UserPrizeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userPrize[userPrizeKey(userID, prizeID)], nil
}

// PrizeWinners implements WinStore.
func (m *MemoryStore) PrizeWinners(ctx context.Context, prizeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winners[prizeID], nil
}

// SeedWinners implements WinStore.
func (m *MemoryStore) SeedWinners(ctx context.Context, prizeID string, winners int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.winners[prizeID]; !exists {
		m.winners[prizeID] = winners
	}
	return nil
}

// Claim implements WinStore.
func (m *MemoryStore) Claim(ctx context.Context, claim Claim) (ClaimStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := claim.Prize
	at := claim.Entry.Timestamp

	if m.winners[p.PrizeID] >= p.MaxWinners {
		return ClaimExhausted, nil
	}

	if tr := p.TimeRestrictions; tr != nil {
		if tr.StartTime != nil && at.Before(*tr.StartTime) {
			return ClaimNotStarted, nil
		}
		if tr.EndTime != nil && at.After(*tr.EndTime) {
			return ClaimEnded, nil
		}
		if tr.DailyLimit > 0 && m.winsSinceLocked(p.PrizeID, claim.DayStart) >= tr.DailyLimit {
			return ClaimDailyCap, nil
		}
		if tr.HourlyLimit > 0 && m.winsSinceLocked(p.PrizeID, at.Add(-time.Hour)) >= tr.HourlyLimit {
			return ClaimHourlyCap, nil
		}
	}

	userID := claim.Entry.UserID
	key := userPrizeKey(userID, p.PrizeID)
	if ur := p.UserRestrictions; ur != nil && userID != "" {
		rec := m.userPrize[key]
		if ur.MaxWinsPerUser > 0 && rec.Count >= ur.MaxWinsPerUser {
			return ClaimUserLimit, nil
		}
		if ur.CooldownPeriod > 0 && !rec.LastWin.IsZero() && at.Before(rec.LastWin.Add(ur.Cooldown())) {
			return ClaimCooldown, nil
		}
	}

	m.winners[p.PrizeID]++
	m.totalWins++

	if userID != "" {
		rec := m.userPrize[key]
		rec.Count++
		rec.LastWin = at
		m.userPrize[key] = rec
	}

	if s, ok := m.sessions[claim.Entry.SessionID]; ok {
		s.session.Wins++
	}

	cutoff := at.Add(-winRetention)
	keep := 0
	for keep < len(m.winLog) && m.winLog[keep].at.Before(cutoff) {
		keep++
	}
	m.winLog = append(m.winLog[keep:], winStamp{prizeID: p.PrizeID, at: at})

	limit := claim.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	m.history = append(m.history, claim.Entry)
	if over := len(m.history) - limit; over > 0 {
		m.history = append(m.history[:0:0], m.history[over:]...)
	}

	return ClaimGranted, nil
}

// History implements WinStore.
func (m *MemoryStore) History(ctx context.Context) ([]WinHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]WinHistoryEntry, len(m.history))
	copy(out, m.history)
	return out, nil
}

// TotalWins implements WinStore.
func (m *MemoryStore) TotalWins(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalWins, nil
}
