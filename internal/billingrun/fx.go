package billingrun

import (
	"github.com/GestionAscensores/elevarapp/internal/billingrun/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingrun.service",
	fx.Provide(service.NewService),
)
