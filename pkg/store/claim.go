// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import "github.com/go-redis/redis/v8"

// claimScript checks and records a win in one round trip.
//
// KEYS: winners, prize wins, all wins, user prize, history, counters, session
// ARGV: prizeID, maxWinners, nowMs, startMs, endMs, dailyLimit, dayStartMs,
// hourlyLimit, hourStartMs, userID, maxWinsPerUser, cooldownMs, entry,
// historyLimit, member, retentionCutoffMs
var claimScript = redis.NewScript(`
local prize = ARGV[1]
local winners = tonumber(redis.call('HGET', KEYS[1], prize) or '0')
if winners >= tonumber(ARGV[2]) then
  return 'exhausted'
end

local now = tonumber(ARGV[3])
if ARGV[4] ~= '' and now < tonumber(ARGV[4]) then
  return 'not_started'
end
if ARGV[5] ~= '' and now > tonumber(ARGV[5]) then
  return 'ended'
end

local daily = tonumber(ARGV[6])
if daily > 0 and redis.call('ZCOUNT', KEYS[2], ARGV[7], '+inf') >= daily then
  return 'daily_cap'
end
local hourly = tonumber(ARGV[8])
if hourly > 0 and redis.call('ZCOUNT', KEYS[2], ARGV[9], '+inf') >= hourly then
  return 'hourly_cap'
end

local user = ARGV[10]
if user ~= '' then
  local maxPerUser = tonumber(ARGV[11])
  if maxPerUser > 0 then
    local count = tonumber(redis.call('HGET', KEYS[4], prize .. ':count') or '0')
    if count >= maxPerUser then
      return 'user_limit'
    end
  end
  local cooldown = tonumber(ARGV[12])
  if cooldown > 0 then
    local last = redis.call('HGET', KEYS[4], prize .. ':last')
    if last and now < tonumber(last) + cooldown then
      return 'cooldown'
    end
  end
end

redis.call('HINCRBY', KEYS[1], prize, 1)
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[15])
redis.call('ZADD', KEYS[3], ARGV[3], ARGV[15])
redis.call('ZREMRANGEBYSCORE', KEYS[2], '-inf', '(' .. ARGV[16])
redis.call('ZREMRANGEBYSCORE', KEYS[3], '-inf', '(' .. ARGV[16])

if user ~= '' then
  redis.call('HINCRBY', KEYS[4], prize .. ':count', 1)
  redis.call('HSET', KEYS[4], prize .. ':last', ARGV[3])
end

redis.call('HINCRBY', KEYS[6], 'total_wins', 1)
if redis.call('EXISTS', KEYS[7]) == 1 then
  redis.call('HINCRBY', KEYS[7], 'wins', 1)
end

redis.call('RPUSH', KEYS[5], ARGV[13])
redis.call('LTRIM', KEYS[5], -tonumber(ARGV[14]), -1)

return 'granted'
`)
