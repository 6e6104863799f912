package metrics

import (
	"github.com/GestionAscensores/elevarapp/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(func(cfg config.Config) *BillingMetrics {
		return BillingWithConfig(Config{
			ServiceName: "elevarapp",
			Environment: cfg.Environment,
		})
	}),
)
