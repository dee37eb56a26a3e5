// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/AccelByte/extend-prize-engine/pkg/campaign"
	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/AccelByte/extend-prize-engine/pkg/risk"
	riskBuiltin "github.com/AccelByte/extend-prize-engine/pkg/risk/builtin"
	"github.com/sirupsen/logrus"
)

// InitRiskScorers builds the device and geo scorers feeding the antifraud
// composite. A kind with no enabled scorer yields nil so the engine uses its
// default.
//
// ============================================================
// DEVELOPER: Register custom risk scorer types in
// pkg/risk/builtin/init.go and declare them under risk_scorers:
// in the campaign file.
// ============================================================
func InitRiskScorers(campaignConfig *campaign.Config) (prize.DeviceRiskScorer, prize.GeoRiskScorer, error) {
	riskBuiltin.RegisterBuiltinScorers()

	scorers, err := risk.CreateScorers(campaignConfig.RiskScorers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create risk scorers: %w", err)
	}
	logrus.Infof("created %d risk scorers", len(scorers))

	device, geo := risk.Combine(scorers)
	return device, geo, nil
}
