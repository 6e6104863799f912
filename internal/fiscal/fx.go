package fiscal

import (
	"github.com/GestionAscensores/elevarapp/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("fiscal",
	fx.Provide(func(log *zap.Logger, clk clock.Clock) Authorizer {
		return NewStubAuthorizer(log, clk)
	}),
)
