package invoice

import (
	"github.com/GestionAscensores/elevarapp/internal/invoice/render"
	"github.com/GestionAscensores/elevarapp/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(service.NewService),
	fx.Provide(render.NewRenderer),
)
