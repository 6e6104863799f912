package sequence

import (
	"github.com/GestionAscensores/elevarapp/internal/sequence/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence.service",
	fx.Provide(service.NewService),
)
