package mock

import (
	"context"
	"sync"
)

// EntitlementGranter is a mock implementation of service.EntitlementGranter for testing
type EntitlementGranter struct {
	// GrantEntitlementFunc allows tests to customize the behavior
	GrantEntitlementFunc func(ctx context.Context, userID, itemID string, quantity int) error

	// Error is returned when no func is set
	Error error

	mu    sync.Mutex
	Calls []GrantEntitlementCall
}

// GrantEntitlementCall tracks parameters for GrantEntitlement calls
type GrantEntitlementCall struct {
	UserID   string
	ItemID   string
	Quantity int
}

// GrantEntitlement records the call and returns the mocked result
func (m *EntitlementGranter) GrantEntitlement(ctx context.Context, userID, itemID string, quantity int) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, GrantEntitlementCall{UserID: userID, ItemID: itemID, Quantity: quantity})
	m.mu.Unlock()

	if m.GrantEntitlementFunc != nil {
		return m.GrantEntitlementFunc(ctx, userID, itemID, quantity)
	}
	return m.Error
}

// CallCount returns the number of GrantEntitlement calls
func (m *EntitlementGranter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// StatIncrementer is a mock implementation of service.StatIncrementer for testing
type StatIncrementer struct {
	IncrementStatFunc func(ctx context.Context, userID, statCode string, inc float64) error
	Error             error

	mu    sync.Mutex
	Calls []IncrementStatCall
}

// IncrementStatCall tracks parameters for IncrementStat calls
type IncrementStatCall struct {
	UserID   string
	StatCode string
	Inc      float64
}

// IncrementStat records the call and returns the mocked result
func (m *StatIncrementer) IncrementStat(ctx context.Context, userID, statCode string, inc float64) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, IncrementStatCall{UserID: userID, StatCode: statCode, Inc: inc})
	m.mu.Unlock()

	if m.IncrementStatFunc != nil {
		return m.IncrementStatFunc(ctx, userID, statCode, inc)
	}
	return m.Error
}

// CallCount returns the number of IncrementStat calls
func (m *StatIncrementer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
