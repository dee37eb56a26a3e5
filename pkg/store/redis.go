// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// KeyPrefix is the prefix for all prize engine keys
	KeyPrefix = "prize_engine:"
	// SessionTTL is how long an idle session hash is kept (7 days)
	SessionTTL = 7 * 24 * time.Hour

	attemptRetention = time.Hour
	bucketRetention  = 2 * time.Hour
	winRetention     = 48 * time.Hour

	fieldUserID      = "user_id"
	fieldIP          = "ip"
	fieldUserAgent   = "user_agent"
	fieldFingerprint = "fingerprint"
	fieldGeo         = "geo"
	fieldAttempts    = "attempts"
	fieldWins        = "wins"
	fieldFirst       = "first_ms"
	fieldLast        = "last_ms"

	counterAttempts = "total_attempts"
	counterWins     = "total_wins"
)

// RedisStore implements prize.Store on Redis. All keys of a campaign share
// the prefix "prize_engine:<campaign>:" so campaigns can share one instance.
// Timestamps are kept with millisecond precision.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store scoped to the campaign.
func NewRedisStore(client redis.UniversalClient, campaignID string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: fmt.Sprintf("%s%s:", KeyPrefix, campaignID),
	}
}

func (r *RedisStore) key(parts ...string) string {
	k := r.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

func (r *RedisStore) sessionKey(id string) string         { return r.key("session", id) }
func (r *RedisStore) sessionAttemptsKey(id string) string { return r.key("session_attempts", id) }
func (r *RedisStore) prizeWinsKey(prizeID string) string  { return r.key("wins", prizeID) }
func (r *RedisStore) userPrizeKey(userID string) string   { return r.key("user_prize", userID) }

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// RecordAttempt implements prize.SessionStore.
func (r *RedisStore) RecordAttempt(ctx context.Context, session prize.UserSession, at time.Time) (prize.UserSession, error) {
	nowMs := toMillis(at)
	sk := r.sessionKey(session.SessionID)
	ak := r.sessionAttemptsKey(session.SessionID)

	fields := []interface{}{fieldLast, nowMs}
	if session.UserID != "" {
		fields = append(fields, fieldUserID, session.UserID)
	}
	if session.IPAddress != "" {
		fields = append(fields, fieldIP, session.IPAddress)
	}
	if session.UserAgent != "" {
		fields = append(fields, fieldUserAgent, session.UserAgent)
	}
	if session.DeviceFingerprint != "" {
		fields = append(fields, fieldFingerprint, session.DeviceFingerprint)
	}
	if session.Geolocation != nil {
		geo, err := json.Marshal(session.Geolocation)
		if err != nil {
			return prize.UserSession{}, fmt.Errorf("failed to marshal geolocation: %w", err)
		}
		fields = append(fields, fieldGeo, string(geo))
	}

	minute := strconv.FormatInt(at.Unix()/60, 10)

	pipe := r.client.TxPipeline()
	pipe.HSetNX(ctx, sk, fieldFirst, nowMs)
	pipe.HSet(ctx, sk, fields...)
	pipe.HIncrBy(ctx, sk, fieldAttempts, 1)
	pipe.Expire(ctx, sk, SessionTTL)
	pipe.SAdd(ctx, r.key("sessions"), session.SessionID)
	pipe.ZAdd(ctx, ak, &redis.Z{Score: float64(nowMs), Member: uuid.NewString()})
	pipe.ZRemRangeByScore(ctx, ak, "-inf", fmt.Sprintf("(%d", toMillis(at.Add(-attemptRetention))))
	pipe.Expire(ctx, ak, 2*attemptRetention)
	if session.IPAddress != "" {
		pipe.HIncrBy(ctx, r.key("ip_attempts"), session.IPAddress, 1)
	}
	if session.UserID != "" {
		pipe.HIncrBy(ctx, r.key("user_attempts"), session.UserID, 1)
	}
	pipe.HIncrBy(ctx, r.key("attempt_buckets"), minute, 1)
	pipe.HIncrBy(ctx, r.key("counters"), counterAttempts, 1)
	all := pipe.HGetAll(ctx, sk)

	if _, err := pipe.Exec(ctx); err != nil {
		logrus.Errorf("failed to record attempt for session %s: %v", session.SessionID, err)
		return prize.UserSession{}, fmt.Errorf("failed to record attempt: %w", err)
	}

	r.cleanupBuckets(ctx, at)

	return parseSession(session.SessionID, all.Val()), nil
}

// cleanupBuckets drops per-minute buckets older than the retention window.
func (r *RedisStore) cleanupBuckets(ctx context.Context, now time.Time) {
	key := r.key("attempt_buckets")
	minutes, err := r.client.HKeys(ctx, key).Result()
	if err != nil || len(minutes) == 0 {
		return
	}

	cutoff := now.Add(-bucketRetention).Unix() / 60
	var toDelete []string
	for _, m := range minutes {
		v, err := strconv.ParseInt(m, 10, 64)
		if err != nil || v < cutoff {
			toDelete = append(toDelete, m)
		}
	}

	if len(toDelete) > 0 {
		r.client.HDel(ctx, key, toDelete...)
	}
}

func parseSession(id string, data map[string]string) prize.UserSession {
	s := prize.UserSession{
		SessionID:         id,
		UserID:            data[fieldUserID],
		IPAddress:         data[fieldIP],
		UserAgent:         data[fieldUserAgent],
		DeviceFingerprint: data[fieldFingerprint],
		FirstAttempt:      fromMillis(data[fieldFirst]),
		LastAttempt:       fromMillis(data[fieldLast]),
	}
	s.Attempts, _ = strconv.Atoi(data[fieldAttempts])
	s.Wins, _ = strconv.Atoi(data[fieldWins])

	if raw := data[fieldGeo]; raw != "" {
		var geo prize.Geolocation
		if err := json.Unmarshal([]byte(raw), &geo); err == nil {
			s.Geolocation = &geo
		}
	}
	return s
}

// AttemptsSince implements prize.SessionStore.
func (r *RedisStore) AttemptsSince(ctx context.Context, sessionID string, since time.Time) (int, error) {
	n, err := r.client.ZCount(ctx, r.sessionAttemptsKey(sessionID), strconv.FormatInt(toMillis(since), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count session attempts: %w", err)
	}
	return int(n), nil
}

// IPAttempts implements prize.SessionStore.
func (r *RedisStore) IPAttempts(ctx context.Context, ip string) (int, error) {
	return r.hgetInt(ctx, r.key("ip_attempts"), ip)
}

// UserAttempts implements prize.SessionStore.
func (r *RedisStore) UserAttempts(ctx context.Context, userID string) (int, error) {
	return r.hgetInt(ctx, r.key("user_attempts"), userID)
}

// CampaignAttemptsSince implements prize.SessionStore with minute granularity:
// since is rounded down to the start of its minute.
func (r *RedisStore) CampaignAttemptsSince(ctx context.Context, since time.Time) (int, error) {
	data, err := r.client.HGetAll(ctx, r.key("attempt_buckets")).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get attempt buckets: %w", err)
	}

	from := since.Unix() / 60
	total := 0
	for minute, countStr := range data {
		m, err := strconv.ParseInt(minute, 10, 64)
		if err != nil || m < from {
			continue
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			continue
		}
		total += count
	}
	return total, nil
}

// SessionCount implements prize.SessionStore.
func (r *RedisStore) SessionCount(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.key("sessions")).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return int(n), nil
}

// TotalAttempts implements prize.SessionStore.
func (r *RedisStore) TotalAttempts(ctx context.Context) (int, error) {
	return r.hgetInt(ctx, r.key("counters"), counterAttempts)
}

// WinsSince implements prize.WinStore. An empty prizeID counts every prize.
// Only the last two days of wins are retained.
func (r *RedisStore) WinsSince(ctx context.Context, prizeID string, since time.Time) (int, error) {
	key := r.key("wins_all")
	if prizeID != "" {
		key = r.prizeWinsKey(prizeID)
	}

	n, err := r.client.ZCount(ctx, key, strconv.FormatInt(toMillis(since), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count wins: %w", err)
	}
	return int(n), nil
}

// UserPrizeWins implements prize.WinStore.
func (r *RedisStore) UserPrizeWins(ctx context.Context, userID, prizeID string) (prize.UserPrizeRecord, error) {
	vals, err := r.client.HMGet(ctx, r.userPrizeKey(userID), prizeID+":count", prizeID+":last").Result()
	if err != nil {
		return prize.UserPrizeRecord{}, fmt.Errorf("failed to get user prize wins: %w", err)
	}

	var rec prize.UserPrizeRecord
	if s, ok := vals[0].(string); ok {
		rec.Count, _ = strconv.Atoi(s)
	}
	if s, ok := vals[1].(string); ok {
		rec.LastWin = fromMillis(s)
	}
	return rec, nil
}

// PrizeWinners implements prize.WinStore.
func (r *RedisStore) PrizeWinners(ctx context.Context, prizeID string) (int, error) {
	return r.hgetInt(ctx, r.key("winners"), prizeID)
}

// SeedWinners implements prize.WinStore. Existing counters are kept so a
// restart never rewinds inventory.
func (r *RedisStore) SeedWinners(ctx context.Context, prizeID string, winners int) error {
	set, err := r.client.HSetNX(ctx, r.key("winners"), prizeID, winners).Result()
	if err != nil {
		return fmt.Errorf("failed to seed winners: %w", err)
	}
	if set {
		logrus.Infof("seeded winners for prize %s: %d", prizeID, winners)
	}
	return nil
}

// Claim implements prize.WinStore as a single Lua script.
func (r *RedisStore) Claim(ctx context.Context, claim prize.Claim) (prize.ClaimStatus, error) {
	p := claim.Prize
	entry := claim.Entry
	at := entry.Timestamp

	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to marshal history entry: %w", err)
	}

	limit := claim.HistoryLimit
	if limit <= 0 {
		limit = prize.DefaultHistoryLimit
	}

	var start, end string
	var daily, hourly int
	if tr := p.TimeRestrictions; tr != nil {
		if tr.StartTime != nil {
			start = strconv.FormatInt(toMillis(*tr.StartTime), 10)
		}
		if tr.EndTime != nil {
			end = strconv.FormatInt(toMillis(*tr.EndTime), 10)
		}
		daily = tr.DailyLimit
		hourly = tr.HourlyLimit
	}

	var maxPerUser int
	var cooldownMs int64
	if ur := p.UserRestrictions; ur != nil {
		maxPerUser = ur.MaxWinsPerUser
		cooldownMs = ur.Cooldown().Milliseconds()
	}

	userKey := r.userPrizeKey(entry.UserID)
	if entry.UserID == "" {
		userKey = r.key("user_prize_anonymous")
	}

	keys := []string{
		r.key("winners"),
		r.prizeWinsKey(p.PrizeID),
		r.key("wins_all"),
		userKey,
		r.key("history"),
		r.key("counters"),
		r.sessionKey(entry.SessionID),
	}
	args := []interface{}{
		p.PrizeID,
		p.MaxWinners,
		toMillis(at),
		start,
		end,
		daily,
		toMillis(claim.DayStart),
		hourly,
		toMillis(at.Add(-time.Hour)),
		entry.UserID,
		maxPerUser,
		cooldownMs,
		string(data),
		limit,
		uuid.NewString(),
		toMillis(at.Add(-winRetention)),
	}

	status, err := claimScript.Run(ctx, r.client, keys, args...).Text()
	if err != nil {
		logrus.Errorf("failed to claim prize %s: %v", p.PrizeID, err)
		return "", fmt.Errorf("failed to claim prize: %w", err)
	}

	return prize.ClaimStatus(status), nil
}

// History implements prize.WinStore.
func (r *RedisStore) History(ctx context.Context) ([]prize.WinHistoryEntry, error) {
	raw, err := r.client.LRange(ctx, r.key("history"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	out := make([]prize.WinHistoryEntry, 0, len(raw))
	for _, item := range raw {
		var e prize.WinHistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			logrus.Warnf("skipping malformed history entry: %v", err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// TotalWins implements prize.WinStore.
func (r *RedisStore) TotalWins(ctx context.Context) (int, error) {
	return r.hgetInt(ctx, r.key("counters"), counterWins)
}

func (r *RedisStore) hgetInt(ctx context.Context, key, field string) (int, error) {
	n, err := r.client.HGet(ctx, key, field).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s %s: %w", key, field, err)
	}
	return n, nil
}
