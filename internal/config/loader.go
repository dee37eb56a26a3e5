// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration.
func (c *Config) Validate() error {
	ports := []struct {
		name string
		port int
	}{
		{"HTTP_PORT", c.HTTPPort},
		{"GRPC_PORT", c.GRPCPort},
		{"METRICS_PORT", c.MetricsPort},
	}
	for _, p := range ports {
		if p.port < 1 || p.port > 65535 {
			return fmt.Errorf("invalid %s: %d (must be 1-65535)", p.name, p.port)
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch c.StoreBackend {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("invalid STORE_BACKEND: %q (must be %s or %s)", c.StoreBackend, StoreMemory, StoreRedis)
	}

	switch c.CatalogBackend {
	case CatalogStatic:
	case CatalogSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when CATALOG_BACKEND=%s", CatalogSQLite)
		}
	default:
		return fmt.Errorf("invalid CATALOG_BACKEND: %q (must be %s or %s)", c.CatalogBackend, CatalogStatic, CatalogSQLite)
	}

	if c.CatalogCacheTTL < 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must be non-negative")
	}
	if c.RedisMaxRetries < 0 {
		return fmt.Errorf("REDIS_MAX_RETRIES must be non-negative")
	}

	if c.FulfillmentEnabled {
		required := map[string]string{
			"AB_NAMESPACE":     c.ABNamespace,
			"AB_BASE_URL":      c.ABBaseURL,
			"AB_CLIENT_ID":     c.ABClientID,
			"AB_CLIENT_SECRET": c.ABClientSecret,
		}
		for name, value := range required {
			if value == "" {
				return fmt.Errorf("%s is required when AB_FULFILLMENT_ENABLED=true", name)
			}
		}
	}

	return nil
}
