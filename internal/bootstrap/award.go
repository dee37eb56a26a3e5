// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/AccelByte/extend-prize-engine/pkg/award"
	awardBuiltin "github.com/AccelByte/extend-prize-engine/pkg/award/builtin"
	"github.com/AccelByte/extend-prize-engine/pkg/campaign"
	"github.com/sirupsen/logrus"
)

// InitAwardExecutor builds the post-win awards declared in the campaign file.
//
// ============================================================
// DEVELOPER: Register custom award types here.
// ============================================================
// Awards run after a win has been claimed, in the order listed
// under on_win in the campaign file. Steps to add a new award:
// 1. Create your award in pkg/award/builtin/ (see grant_item.go)
// 2. Register the type in pkg/award/builtin/init.go
// 3. Declare it under awards: and reference it from on_win:
//
// Awards that call external services receive them through
// awardBuiltin.Dependencies.
// ============================================================
func InitAwardExecutor(
	campaignConfig *campaign.Config,
	deps *awardBuiltin.Dependencies,
	observer award.Observer,
) (*award.Executor, *award.Registry, error) {
	awardBuiltin.RegisterAwards(deps)

	registry := award.NewRegistry()
	if err := award.RegisterAwards(registry, campaignConfig.Awards); err != nil {
		return nil, nil, fmt.Errorf("failed to register awards: %w", err)
	}

	if err := campaignConfig.ValidateWiring(registry); err != nil {
		return nil, nil, err
	}
	logrus.Infof("award wiring validated: on_win=%v", campaignConfig.OnWin)

	return award.NewExecutor(registry, observer), registry, nil
}
