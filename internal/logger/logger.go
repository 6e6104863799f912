package logger

import (
	"github.com/GestionAscensores/elevarapp/internal/config"
	"go.uber.org/zap"
)

// New builds the process logger: JSON in production, console otherwise.
func New(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
