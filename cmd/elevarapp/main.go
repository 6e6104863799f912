package main

import (
	"github.com/GestionAscensores/elevarapp/internal/audit"
	"github.com/GestionAscensores/elevarapp/internal/billingrun"
	"github.com/GestionAscensores/elevarapp/internal/clock"
	"github.com/GestionAscensores/elevarapp/internal/config"
	"github.com/GestionAscensores/elevarapp/internal/events"
	"github.com/GestionAscensores/elevarapp/internal/fiscal"
	"github.com/GestionAscensores/elevarapp/internal/invoice"
	"github.com/GestionAscensores/elevarapp/internal/logger"
	"github.com/GestionAscensores/elevarapp/internal/massbilling"
	"github.com/GestionAscensores/elevarapp/internal/metrics"
	"github.com/GestionAscensores/elevarapp/internal/migration"
	"github.com/GestionAscensores/elevarapp/internal/pricing"
	"github.com/GestionAscensores/elevarapp/internal/scheduler"
	"github.com/GestionAscensores/elevarapp/internal/seed"
	"github.com/GestionAscensores/elevarapp/internal/sequence"
	"github.com/GestionAscensores/elevarapp/internal/server"
	"github.com/GestionAscensores/elevarapp/internal/taxcategory"
	"github.com/GestionAscensores/elevarapp/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		clock.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			return seed.EnsureDemoTenant(conn)
		}),

		sequence.Module,
		fiscal.Module,
		metrics.Module,
		events.Module,
		audit.Module,
		invoice.Module,
		pricing.Module,
		taxcategory.Module,
		massbilling.Module,
		billingrun.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}
