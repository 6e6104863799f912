package massbilling

import (
	"github.com/GestionAscensores/elevarapp/internal/massbilling/service"
	"go.uber.org/fx"
)

var Module = fx.Module("massbilling.generator",
	fx.Provide(service.NewGenerator),
)
