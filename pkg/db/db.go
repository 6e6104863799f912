package db

import (
	"github.com/GestionAscensores/elevarapp/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to the relational store. All fiscal numbering relies on the
// store's row locking, so the connection must point at a transactional engine.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	log.Info("database connected")
	return conn, nil
}
