package audit

import (
	"github.com/GestionAscensores/elevarapp/internal/audit/repository"
	"github.com/GestionAscensores/elevarapp/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
