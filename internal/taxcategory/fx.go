package taxcategory

import (
	taxcategorydomain "github.com/GestionAscensores/elevarapp/internal/taxcategory/domain"
	"github.com/GestionAscensores/elevarapp/internal/taxcategory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxcategory.service",
	fx.Provide(service.NewService),
	fx.Provide(func(svc taxcategorydomain.Service) taxcategorydomain.Invalidator {
		return svc
	}),
)
