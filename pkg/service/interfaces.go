package service

import (
	"context"
)

// Fulfillment backends used by award actions.
//
// Interfaces keep the award package testable without a live platform.

type EntitlementGranter interface {
	// GrantEntitlement grants an entitlement/item to a player
	GrantEntitlement(ctx context.Context, userID, itemID string, quantity int) error
}

type StatIncrementer interface {
	// IncrementStat adds inc to the player's statistic statCode
	IncrementStat(ctx context.Context, userID, statCode string, inc float64) error
}
