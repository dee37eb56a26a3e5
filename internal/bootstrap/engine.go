// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-prize-engine/pkg/campaign"
	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/sirupsen/logrus"
)

// InitEngine creates the prize engine for the campaign.
func InitEngine(
	ctx context.Context,
	campaignConfig *campaign.Config,
	storage *Storage,
	device prize.DeviceRiskScorer,
	geo prize.GeoRiskScorer,
) (*prize.Engine, error) {
	engine, err := prize.NewEngine(ctx, campaignConfig.ToEngineConfig(), prize.Dependencies{
		Store:        storage.Store,
		Catalog:      storage.Catalog,
		DeviceScorer: device,
		GeoScorer:    geo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prize engine: %w", err)
	}

	logrus.Infof("prize engine ready for campaign %s", campaignConfig.CampaignID)
	return engine, nil
}
