package service

import (
	"context"
	"fmt"
	"strings"

	auditdomain "github.com/GestionAscensores/elevarapp/internal/audit/domain"
	"github.com/GestionAscensores/elevarapp/internal/auditcontext"
	clientdomain "github.com/GestionAscensores/elevarapp/internal/client/domain"
	"github.com/GestionAscensores/elevarapp/internal/clock"
	"github.com/GestionAscensores/elevarapp/internal/events"
	"github.com/GestionAscensores/elevarapp/internal/metrics"
	pricingdomain "github.com/GestionAscensores/elevarapp/internal/pricing/domain"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	outbox  *events.Outbox
	audit   auditdomain.Service
	metrics *metrics.BillingMetrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Outbox  *events.Outbox
	Audit   auditdomain.Service     `optional:"true"`
	Metrics *metrics.BillingMetrics `optional:"true"`
}

func NewService(p ServiceParam) pricingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("pricing.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		outbox:  p.Outbox,
		audit:   p.Audit,
		metrics: p.Metrics,
	}
}

// ApplyMassUpdate revises every eligible recurring price by the given
// percentage. New prices round half away from zero to the nearest whole
// currency unit; rows whose rounded price does not move are skipped so the
// history stays free of zero-effect noise.
func (s *Service) ApplyMassUpdate(ctx context.Context, req pricingdomain.MassUpdateRequest) (pricingdomain.MassUpdateResult, error) {
	tenantID, err := s.tenantIDFromContext(ctx)
	if err != nil {
		return pricingdomain.MassUpdateResult{}, err
	}
	if !req.Percentage.IsPositive() {
		return pricingdomain.MassUpdateResult{}, pricingdomain.ErrInvalidPercentage
	}
	frequency := strings.ToUpper(strings.TrimSpace(req.Frequency))
	if frequency == "" {
		frequency = pricingdomain.FrequencyAll
	}
	if frequency != pricingdomain.FrequencyAll &&
		!clientdomain.ValidFrequency(clientdomain.PriceUpdateFrequency(frequency)) {
		return pricingdomain.MassUpdateResult{}, pricingdomain.ErrInvalidFrequency
	}

	factor := decimal.NewFromInt(1).Add(req.Percentage.Div(decimal.NewFromInt(100)))
	now := s.clock.Now()
	month := pricingdomain.MonthKey(now)
	updatedBy := s.actorFromContext(ctx)

	scannedClients := map[snowflake.ID]struct{}{}
	changes := 0

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("tenant_id = ? AND exclude_from_mass_update = ?", tenantID, false)
		if frequency != pricingdomain.FrequencyAll {
			query = query.Where("price_update_frequency = ?", frequency)
		}
		var rows []clientdomain.ClientEquipment
		if err := query.Order("client_id, id").Find(&rows).Error; err != nil {
			return err
		}

		for _, row := range rows {
			scannedClients[row.ClientID] = struct{}{}

			newPrice := row.Price.Mul(factor).Round(0)
			if newPrice.Equal(row.Price) {
				continue
			}

			result := tx.Model(&clientdomain.ClientEquipment{}).
				Where("id = ? AND tenant_id = ?", row.ID, tenantID).
				Updates(map[string]any{
					"price":             newPrice,
					"last_price_update": now,
					"updated_at":        now,
				})
			if result.Error != nil {
				return result.Error
			}

			history := &pricingdomain.PriceHistory{
				ID:               s.genID.Generate(),
				TenantID:         tenantID,
				ClientID:         row.ClientID,
				EquipmentID:      row.ID,
				PreviousPrice:    row.Price,
				NewPrice:         newPrice,
				PercentageChange: req.Percentage,
				Month:            month,
				UpdatedBy:        updatedBy,
				IsMassUpdate:     true,
				CreatedAt:        now,
			}
			if err := tx.Create(history).Error; err != nil {
				return err
			}
			changes++
		}

		if changes == 0 {
			return nil
		}
		// No dedupe key: every run re-raises prices, so every run gets
		// its own event.
		return s.outbox.PublishTx(ctx, tx, events.Event{
			TenantID: tenantID,
			Type:     events.EventMassPriceUpdated,
			Payload:  map[string]any{"month": month, "changes": changes},
		})
	})
	if err != nil {
		return pricingdomain.MassUpdateResult{}, err
	}
	s.metrics.AddPriceUpdates(changes)

	result := pricingdomain.MassUpdateResult{
		UpdatedClients: len(scannedClients),
		Changes:        changes,
	}
	if changes == 0 {
		result.Message = "no prices changed"
	} else {
		result.Message = fmt.Sprintf("updated %d prices across %d clients", changes, len(scannedClients))
	}

	if s.audit != nil {
		s.audit.Record(ctx, tenantID, auditdomain.Entry{
			Action:     auditdomain.ActionMassPriceUpdate,
			TargetType: "client_equipment",
			Metadata: map[string]any{
				"percentage": req.Percentage.String(),
				"frequency":  frequency,
				"month":      month,
				"changes":    changes,
			},
		})
	}
	s.log.Info("mass price update applied",
		zap.String("month", month),
		zap.Int("clients_scanned", result.UpdatedClients),
		zap.Int("changes", changes),
	)
	return result, nil
}

func (s *Service) ListHistory(ctx context.Context, req pricingdomain.ListHistoryRequest) ([]pricingdomain.PriceHistory, error) {
	tenantID, err := s.tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if req.ClientID != "" {
		clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
		if err != nil || clientID == 0 {
			return nil, pricingdomain.ErrInvalidClient
		}
		query = query.Where("client_id = ?", clientID)
	}
	if req.Month != "" {
		query = query.Where("month = ?", req.Month)
	}
	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows []pricingdomain.PriceHistory
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) tenantIDFromContext(ctx context.Context) (snowflake.ID, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return 0, pricingdomain.ErrInvalidTenant
	}
	return tenantID, nil
}

func (s *Service) actorFromContext(ctx context.Context) string {
	actorType, actorID := auditcontext.ActorFromContext(ctx)
	if actorID != "" {
		return actorID
	}
	if actorType != "" {
		return actorType
	}
	return string(auditdomain.ActorTypeSystem)
}
