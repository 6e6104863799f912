package service

import (
	"context"
	"fmt"
	"time"

	billingrundomain "github.com/GestionAscensores/elevarapp/internal/billingrun/domain"
	clientdomain "github.com/GestionAscensores/elevarapp/internal/client/domain"
	"github.com/GestionAscensores/elevarapp/internal/clock"
	invoicedomain "github.com/GestionAscensores/elevarapp/internal/invoice/domain"
	sequencedomain "github.com/GestionAscensores/elevarapp/internal/sequence/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Generator struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	seq   sequencedomain.Allocator
	clock clock.Clock
}

type GeneratorParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Seq   sequencedomain.Allocator
	Clock clock.Clock
}

func NewGenerator(p GeneratorParam) billingrundomain.Generator {
	return &Generator{
		db:  p.DB,
		log: p.Log.Named("massbilling.generator"),

		genID: p.GenID,
		seq:   p.Seq,
		clock: p.Clock,
	}
}

// Generate mints one provisional invoice per eligible recurring client for
// the period. Each client is billed in its own transaction: a failure on
// one client leaves the others committed, and the per-period uniqueness
// check makes a retry bill only the clients that were missed.
func (g *Generator) Generate(ctx context.Context, tenantID snowflake.ID, period string) (billingrundomain.GenerateResult, error) {
	if tenantID == 0 {
		return billingrundomain.GenerateResult{}, billingrundomain.ErrInvalidTenant
	}
	periodStart, err := time.Parse("2006-01", period)
	if err != nil {
		return billingrundomain.GenerateResult{}, fmt.Errorf("invalid period %q: %w", period, err)
	}
	periodEnd := periodStart.AddDate(0, 1, 0).Add(-24 * time.Hour)

	var pointOfSale int
	if err := g.db.WithContext(ctx).Raw(
		`SELECT point_of_sale FROM tenants WHERE id = ?`, tenantID,
	).Scan(&pointOfSale).Error; err != nil {
		return billingrundomain.GenerateResult{}, err
	}
	if pointOfSale == 0 {
		return billingrundomain.GenerateResult{}, billingrundomain.ErrInvalidTenant
	}

	var equipment []clientdomain.ClientEquipment
	err = g.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("client_id, id").
		Find(&equipment).Error
	if err != nil {
		return billingrundomain.GenerateResult{}, err
	}

	byClient := map[snowflake.ID][]clientdomain.ClientEquipment{}
	order := make([]snowflake.ID, 0)
	for _, row := range equipment {
		if _, seen := byClient[row.ClientID]; !seen {
			order = append(order, row.ClientID)
		}
		byClient[row.ClientID] = append(byClient[row.ClientID], row)
	}

	result := billingrundomain.GenerateResult{}
	for _, clientID := range order {
		billed, err := g.billClient(ctx, tenantID, clientID, pointOfSale, period, periodStart, periodEnd, byClient[clientID])
		if err != nil {
			g.log.Error("failed to bill client",
				zap.String("client_id", clientID.String()),
				zap.String("period", period),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, fmt.Sprintf("client %s: %v", clientID, err))
			continue
		}
		if billed {
			result.Count++
		}
	}
	return result, nil
}

func (g *Generator) billClient(
	ctx context.Context,
	tenantID, clientID snowflake.ID,
	pointOfSale int,
	period string,
	periodStart, periodEnd time.Time,
	equipment []clientdomain.ClientEquipment,
) (bool, error) {
	billed := false
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Per-period uniqueness: a client already billed this period is a
		// no-op, which is what makes scheduler retries safe.
		var existing int64
		if err := tx.Model(&invoicedomain.Invoice{}).
			Where("tenant_id = ? AND client_id = ? AND billing_period = ?", tenantID, clientID, period).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		var active int64
		if err := tx.Model(&clientdomain.Client{}).
			Where("id = ? AND tenant_id = ? AND active = ?", clientID, tenantID, true).
			Count(&active).Error; err != nil {
			return err
		}
		if active == 0 {
			return nil
		}

		draftNumber, err := g.seq.NextTx(ctx, tx, tenantID, sequencedomain.SeriesDraft)
		if err != nil {
			return err
		}

		net := decimal.Zero
		for _, item := range equipment {
			net = net.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		now := g.clock.Now()
		from := periodStart
		to := periodEnd
		billingPeriod := period
		record := &invoicedomain.Invoice{
			ID:            g.genID.Generate(),
			TenantID:      tenantID,
			ClientID:      clientID,
			Type:          invoicedomain.TypeFacturaC,
			Status:        invoicedomain.StatusProvisional,
			PointOfSale:   pointOfSale,
			DraftNumber:   &draftNumber,
			Date:          now,
			ServiceFrom:   &from,
			ServiceTo:     &to,
			NetAmount:     net,
			IVAAmount:     decimal.Zero,
			TotalAmount:   net,
			BillingPeriod: &billingPeriod,
			PaymentStatus: invoicedomain.PaymentPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		for _, item := range equipment {
			line := &invoicedomain.InvoiceItem{
				ID:          g.genID.Generate(),
				InvoiceID:   record.ID,
				Description: fmt.Sprintf("Abono mantenimiento %s (%s)", item.Type, period),
				Quantity:    decimal.NewFromInt(int64(item.Quantity)),
				UnitPrice:   item.Price,
				IVARate:     decimal.Zero,
				CreatedAt:   now,
			}
			if err := tx.Create(line).Error; err != nil {
				return err
			}
		}
		billed = true
		return nil
	})
	return billed, err
}
