// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import "time"

// Backend names accepted by STORE_BACKEND and CATALOG_BACKEND.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	CatalogStatic = "static"
	CatalogSQLite = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"8000"`
	GRPCPort           int      `env:"GRPC_PORT" envDefault:"6565"`
	MetricsPort        int      `env:"METRICS_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	Environment        string   `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName        string   `env:"SERVICE_NAME" envDefault:"PrizeEngine"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`

	// ============================================================
	// Campaign and storage
	// ============================================================
	CampaignConfigPath string        `env:"CAMPAIGN_CONFIG_PATH" envDefault:"config/campaign.yaml"`
	StoreBackend       string        `env:"STORE_BACKEND" envDefault:"memory"`
	CatalogBackend     string        `env:"CATALOG_BACKEND" envDefault:"static"`
	SQLitePath         string        `env:"SQLITE_PATH" envDefault:"data/catalog.db"`
	CatalogCacheTTL    time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	// ============================================================
	// Redis configuration (STORE_BACKEND=redis)
	// ============================================================
	RedisHost       string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort       string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisMaxRetries int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`

	// ============================================================
	// AccelByte configuration (required when fulfillment is enabled)
	// ============================================================
	FulfillmentEnabled bool   `env:"AB_FULFILLMENT_ENABLED" envDefault:"false"`
	ABNamespace        string `env:"AB_NAMESPACE"`
	ABBaseURL          string `env:"AB_BASE_URL"`
	ABClientID         string `env:"AB_CLIENT_ID"`
	ABClientSecret     string `env:"AB_CLIENT_SECRET"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled bool `env:"OTEL_ENABLED" envDefault:"true"`
}
