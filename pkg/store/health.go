// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker struct {
	pinger  Pinger
	timeout time.Duration
}

// NewHealthChecker creates a health checker with a 2 second probe timeout.
func NewHealthChecker(p Pinger) *HealthChecker {
	return &HealthChecker{pinger: p, timeout: 2 * time.Second}
}

// Check performs one probe.
func (h *HealthChecker) Check(ctx context.Context) error {
	if h == nil || h.pinger == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		logrus.Errorf("store health check failed: %v", err)
		return err
	}

	logrus.Debugf("store health check passed")
	return nil
}

// IsHealthy returns true if the store is accessible.
func (h *HealthChecker) IsHealthy(ctx context.Context) bool {
	return h.Check(ctx) == nil
}

// RedisPinger adapts a Redis client to Pinger.
type RedisPinger struct {
	Client redis.UniversalClient
}

// Ping implements Pinger.
func (p RedisPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
