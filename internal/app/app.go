// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/AccelByte/extend-prize-engine/internal/bootstrap"
	"github.com/AccelByte/extend-prize-engine/internal/config"
	"github.com/AccelByte/extend-prize-engine/internal/server"
	"github.com/AccelByte/extend-prize-engine/pkg/campaign"
	"github.com/AccelByte/extend-prize-engine/pkg/handler"
	"github.com/AccelByte/extend-prize-engine/pkg/metrics"
	"github.com/AccelByte/extend-prize-engine/pkg/service"
	"github.com/cenkalti/backoff/v4"

	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/factory"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/iam"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/platform"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/social"
	sdkAuth "github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/utils/auth"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	awardBuiltin "github.com/AccelByte/extend-prize-engine/pkg/award/builtin"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	grpcServer        *server.GRPCServer
	httpServer        *server.HTTPServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	storage           *bootstrap.Storage
	shutdownTelemetry func(context.Context) error

	// AccelByte SDK repositories, shared by every platform service.
	// Nil when fulfillment is disabled.
	configRepo *sdkAuth.ConfigRepositoryImpl
	tokenRepo  *sdkAuth.TokenRepositoryImpl
}

// New creates and initializes a new application instance.
//
// ============================================================
// DEVELOPER: Application initialization order
// ============================================================
// Components are initialized in dependency order:
// 1. AccelByte SDK (only when AB_FULFILLMENT_ENABLED=true)
// 2. Redis (only when STORE_BACKEND=redis)
// 3. Campaign config (YAML configuration)
// 4. Storage (win store, prize catalog)
// 5. Prize components (risk scorers, engine, awards)
// 6. Servers (gRPC health, HTTP API, metrics)
// 7. Telemetry (OpenTelemetry tracing)
// ============================================================
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Initialize Client Auth using AccelByte SDK
	// ============================================================
	if cfg.FulfillmentEnabled {
		if err := app.initAccelByteSDKAuth(); err != nil {
			return nil, fmt.Errorf("failed to init AccelByte SDK: %w", err)
		}
	} else {
		logrus.Warn("AccelByte fulfillment disabled, grant_item and increment_stat awards run in dry-run mode")
	}

	// ============================================================
	// Step 2: Initialize Redis
	// ============================================================
	if cfg.StoreBackend == config.StoreRedis {
		if err := app.initRedis(ctx); err != nil {
			return nil, fmt.Errorf("failed to init Redis: %w", err)
		}
	}

	// ============================================================
	// Step 3: Load campaign configuration
	// ============================================================
	campaignConfig, err := campaign.LoadConfig(cfg.CampaignConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign config from %s: %w", cfg.CampaignConfigPath, err)
	}
	logrus.Infof("loaded campaign %s from %s (%d prizes)",
		campaignConfig.CampaignID, cfg.CampaignConfigPath, len(campaignConfig.Prizes))

	// ============================================================
	// Step 4: Initialize storage
	// ============================================================
	// The Redis client is nil unless STORE_BACKEND=redis; the
	// catalog cache is only enabled alongside it.
	// ============================================================
	var redisClient redis.UniversalClient
	if app.redisClient != nil {
		redisClient = app.redisClient
	}
	app.storage, err = bootstrap.InitStorage(ctx, cfg, campaignConfig, redisClient)
	if err != nil {
		app.closeRedis()
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// ============================================================
	// Step 5: Bootstrap prize components
	// ============================================================
	// Risk Scorers → Prize Engine → Award Executor
	//
	// DEVELOPER: If your custom awards need external services,
	// add them to awardBuiltin.Dependencies (pkg/award/builtin/init.go).
	// ============================================================
	deviceScorer, geoScorer, err := bootstrap.InitRiskScorers(campaignConfig)
	if err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("failed to init risk scorers: %w", err)
	}

	engine, err := bootstrap.InitEngine(ctx, campaignConfig, app.storage, deviceScorer, geoScorer)
	if err != nil {
		app.closeStorage()
		return nil, err
	}

	m := metrics.New()

	deps := &awardBuiltin.Dependencies{}
	if cfg.FulfillmentEnabled {
		deps.EntitlementGranter = app.initItemGranter()
		deps.StatIncrementer = app.initStatisticService()
	}

	executor, _, err := bootstrap.InitAwardExecutor(campaignConfig, deps, m)
	if err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("failed to init award executor: %w", err)
	}

	// ============================================================
	// Step 6: Setup servers
	// ============================================================
	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, app.storage.Health)
	if err := app.grpcServer.Setup(); err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	prizeHandler := handler.NewPrize(engine, handler.Options{
		Executor:        executor,
		OnWin:           campaignConfig.OnWin,
		RollbackOnError: campaignConfig.RollbackOnError,
		Health:          app.storage.Health,
		Metrics:         m,
	})
	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, prizeHandler, cfg.CORSAllowedOrigins)
	if err := app.httpServer.Setup(); err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("failed to setup HTTP server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(m.Collectors()...); err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// ============================================================
	// Step 7: Setup telemetry
	// ============================================================
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, 0)
		if err != nil {
			app.closeStorage()
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// initAccelByteSDKAuth initializes the AccelByte SDK auth by performing client login.
//
// ============================================================
// DEVELOPER: AccelByte Client Auth configuration
// ============================================================
// The Client Auth is configured via environment variables:
// - AB_BASE_URL, AB_CLIENT_ID, AB_CLIENT_SECRET, AB_NAMESPACE
//
// The SDK refreshes the token at 80% of its TTL. configRepo and
// tokenRepo must be reused by every platform service so they
// share the session.
// ============================================================
func (a *App) initAccelByteSDKAuth() error {
	a.configRepo = sdkAuth.DefaultConfigRepositoryImpl()
	a.tokenRepo = sdkAuth.DefaultTokenRepositoryImpl()
	refreshRepo := &sdkAuth.RefreshTokenImpl{AutoRefresh: true, RefreshRate: 0.8}

	oauthService := iam.OAuth20Service{
		Client:                 factory.NewIamClient(a.configRepo),
		ConfigRepository:       a.configRepo,
		TokenRepository:        a.tokenRepo,
		RefreshTokenRepository: refreshRepo,
	}

	clientID := a.configRepo.GetClientId()
	clientSecret := a.configRepo.GetClientSecret()

	if err := oauthService.LoginClient(&clientID, &clientSecret); err != nil {
		return fmt.Errorf("unable to login using clientId and clientSecret: %w", err)
	}

	logrus.Info("AccelByte SDK initialized and authenticated")
	return nil
}

// initRedis connects to Redis, retrying with exponential backoff.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
		Password:     a.cfg.RedisPassword,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	retry := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(a.cfg.RedisMaxRetries)),
		ctx,
	)

	err := backoff.Retry(
		func() error {
			if err := client.Ping(ctx).Err(); err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		retry,
	)
	if err != nil {
		_ = client.Close()
		return err
	}

	a.redisClient = client
	logrus.Infof("Redis client initialized (%s)", client.Options().Addr)
	return nil
}

// initItemGranter creates the entitlement service behind grant_item awards.
// Reuses the repositories from initAccelByteSDKAuth.
func (a *App) initItemGranter() service.EntitlementGranter {
	fulfillmentService := &platform.FulfillmentService{
		Client:           factory.NewPlatformClient(a.configRepo),
		ConfigRepository: a.configRepo,
		TokenRepository:  a.tokenRepo,
	}

	return service.NewEntitlementService(fulfillmentService, service.EntitlementServiceConfig{
		Namespace: a.cfg.ABNamespace,
	})
}

func (a *App) initStatisticService() service.StatIncrementer {
	statisticService := &social.UserStatisticService{
		Client:           factory.NewSocialClient(a.configRepo),
		ConfigRepository: a.configRepo,
		TokenRepository:  a.tokenRepo,
	}

	return service.NewStatisticService(statisticService, service.StatisticServiceConfig{
		Namespace: a.cfg.ABNamespace,
	})
}

func (a *App) closeStorage() {
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			logrus.Errorf("storage close error: %v", err)
		}
	}
	a.closeRedis()
}

func (a *App) closeRedis() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logrus.Errorf("Redis close error: %v", err)
		}
		a.redisClient = nil
	}
}
