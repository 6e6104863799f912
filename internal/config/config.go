package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds process configuration resolved from the environment.
type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseURL string

	// Fiscal authority integration.
	FiscalEndpoint string
	FiscalTimeout  time.Duration

	// Classification cache.
	TaxCategoryCacheTTL time.Duration
}

// Load reads configuration from the environment with sane defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "postgres://localhost:5432/elevarapp?sslmode=disable")
	v.SetDefault("FISCAL_ENDPOINT", "")
	v.SetDefault("FISCAL_TIMEOUT", "30s")
	v.SetDefault("TAX_CATEGORY_CACHE_TTL", "10m")

	cfg := Config{
		Environment:         v.GetString("ENVIRONMENT"),
		HTTPAddr:            v.GetString("HTTP_ADDR"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		FiscalEndpoint:      v.GetString("FISCAL_ENDPOINT"),
		FiscalTimeout:       v.GetDuration("FISCAL_TIMEOUT"),
		TaxCategoryCacheTTL: v.GetDuration("TAX_CATEGORY_CACHE_TTL"),
	}
	return cfg, nil
}

// IsProduction reports whether the process runs against production data.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
