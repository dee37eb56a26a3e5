package builtin

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-prize-engine/pkg/award"
	"github.com/AccelByte/extend-prize-engine/pkg/service"
	"github.com/sirupsen/logrus"
)

const (
	// GrantItemType is the identifier for the item grant award
	GrantItemType = "grant_item"
)

// GrantItemAward fulfills the won prize's item through the platform.
// The item_id parameter, when set, overrides the prize's own item.
type GrantItemAward struct {
	config   award.AwardConfig
	granter  service.EntitlementGranter
	itemID   string
	quantity int
}

// NewGrantItemAward creates a new grant item award.
func NewGrantItemAward(config award.AwardConfig, granter service.EntitlementGranter) *GrantItemAward {
	return &GrantItemAward{
		config:   config,
		granter:  granter,
		itemID:   config.GetParameterString("item_id", ""),
		quantity: config.GetParameterInt("quantity", 1),
	}
}

func (a *GrantItemAward) ID() string {
	return a.config.ID
}

func (a *GrantItemAward) Name() string {
	return "Grant Item"
}

func (a *GrantItemAward) Config() award.AwardConfig {
	return a.config
}

// Execute grants the item to the winner.
func (a *GrantItemAward) Execute(ctx context.Context, event *award.WinEvent) error {
	itemID := a.itemID
	if itemID == "" {
		itemID = event.Prize.ItemID
	}
	if itemID == "" {
		return fmt.Errorf("prize %s has no item to grant", event.Prize.ID)
	}
	if event.UserID == "" {
		return fmt.Errorf("cannot grant item %s: anonymous winner", itemID)
	}

	if a.granter == nil {
		logrus.Warnf("[DRY RUN] would grant item %s (quantity: %d) to user %s",
			itemID, a.quantity, event.UserID)
		return nil
	}

	if err := a.granter.GrantEntitlement(ctx, event.UserID, itemID, a.quantity); err != nil {
		return fmt.Errorf("failed to grant item: %w", err)
	}

	logrus.Infof("granted item %s to user %s for prize %s", itemID, event.UserID, event.Prize.ID)
	return nil
}

// Rollback is not supported for item grants.
func (a *GrantItemAward) Rollback(ctx context.Context, event *award.WinEvent) error {
	return award.ErrRollbackNotSupported
}
