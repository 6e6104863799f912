package seed

import (
	"context"
	"errors"
	"time"

	billingrundomain "github.com/GestionAscensores/elevarapp/internal/billingrun/domain"
	clientdomain "github.com/GestionAscensores/elevarapp/internal/client/domain"
	tenantdomain "github.com/GestionAscensores/elevarapp/internal/tenant/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultTenantName = "Demo Ascensores"
	defaultTenantCUIT = "30-71234567-8"
)

// EnsureDemoTenant seeds a demo tenant with one client and a couple of
// maintenance subscriptions so a fresh install has something to bill.
func EnsureDemoTenant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, created, err := ensureTenantTx(ctx, tx, node)
		if err != nil || !created {
			return err
		}

		now := time.Now().UTC()
		client := clientdomain.Client{
			ID:        node.Generate(),
			TenantID:  tenant.ID,
			Name:      "Consorcio Av. Siempreviva 742",
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&client).Error; err != nil {
			return err
		}

		equipments := []clientdomain.ClientEquipment{
			{
				ID:                   node.Generate(),
				TenantID:             tenant.ID,
				ClientID:             client.ID,
				Type:                 "Ascensor electromecánico",
				Quantity:             2,
				Price:                decimal.NewFromInt(85000),
				PriceUpdateFrequency: clientdomain.FrequencyMonthly,
				CreatedAt:            now,
				UpdatedAt:            now,
			},
			{
				ID:                    node.Generate(),
				TenantID:              tenant.ID,
				ClientID:              client.ID,
				Type:                  "Montacargas",
				Quantity:              1,
				Price:                 decimal.NewFromInt(60000),
				ExcludeFromMassUpdate: true,
				PriceUpdateFrequency:  clientdomain.FrequencyQuarterly,
				CreatedAt:             now,
				UpdatedAt:             now,
			},
		}
		for i := range equipments {
			if err := tx.WithContext(ctx).Create(&equipments[i]).Error; err != nil {
				return err
			}
		}

		state := billingrundomain.BillingScheduleState{
			TenantID:       tenant.ID,
			AutoBillingDay: 1,
			UpdatedAt:      now,
		}
		return tx.WithContext(ctx).Create(&state).Error
	})
}

func ensureTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (tenantdomain.Tenant, bool, error) {
	var tenant tenantdomain.Tenant
	err := tx.WithContext(ctx).Where("cuit = ?", defaultTenantCUIT).First(&tenant).Error
	if err == nil {
		return tenant, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tenant, false, err
	}
	now := time.Now().UTC()
	tenant = tenantdomain.Tenant{
		ID:          node.Generate(),
		Name:        defaultTenantName,
		CUIT:        defaultTenantCUIT,
		PointOfSale: 1,
		RegimeType:  tenantdomain.RegimeTypeServices,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(&tenant).Error; err != nil {
		return tenant, false, err
	}
	return tenant, true, nil
}
