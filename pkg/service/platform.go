package service

import (
	"context"
	"fmt"

	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclient/fulfillment"
	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclientmodels"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/platform"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/social"
	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclient/user_statistic"
	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclientmodels"
)

type EntitlementService struct {
	fulfillmentClient *platform.FulfillmentService
	cfg               EntitlementServiceConfig
}

type EntitlementServiceConfig struct {
	Namespace string
}

func NewEntitlementService(
	fulfillmentClient *platform.FulfillmentService,
	cfg EntitlementServiceConfig,
) *EntitlementService {
	return &EntitlementService{
		fulfillmentClient: fulfillmentClient,
		cfg:               cfg,
	}
}

// GrantEntitlement fulfills a prize item with source REWARD.
func (s *EntitlementService) GrantEntitlement(
	ctx context.Context,
	userID string,
	itemID string,
	quantity int,
) error {
	if userID == "" {
		return fmt.Errorf("cannot fulfill item %s: anonymous winner", itemID)
	}

	qnty := int32(quantity)
	input := &fulfillment.FulfillItemParams{
		Namespace: s.cfg.Namespace,
		UserID:    userID,
		Body: &platformclientmodels.FulfillmentRequest{
			ItemID:   itemID,
			Quantity: &qnty,
			Source:   platformclientmodels.FulfillmentRequestSourceREWARD,
		},
	}

	resp, err := s.fulfillmentClient.FulfillItemShort(input)
	if err != nil {
		return fmt.Errorf("failed to fulfill item: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("could not grant item to user: empty response")
	}

	return nil
}

type StatisticService struct {
	statisticsService *social.UserStatisticService
	cfg               StatisticServiceConfig
}

type StatisticServiceConfig struct {
	Namespace string
}

func NewStatisticService(
	statisticsService *social.UserStatisticService,
	cfg StatisticServiceConfig,
) *StatisticService {
	return &StatisticService{
		statisticsService: statisticsService,
		cfg:               cfg,
	}
}

func (s *StatisticService) IncrementStat(ctx context.Context, userID, statCode string, inc float64) error {
	input := &user_statistic.IncUserStatItemValueParams{
		Namespace: s.cfg.Namespace,
		UserID:    userID,
		StatCode:  statCode,
		Body: &socialclientmodels.StatItemInc{
			Inc: inc,
		},
	}

	if _, err := s.statisticsService.IncUserStatItemValueShort(input); err != nil {
		return fmt.Errorf("failed to increment user %s statistic %s: %w", userID, statCode, err)
	}

	return nil
}
