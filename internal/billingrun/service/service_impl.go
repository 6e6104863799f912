package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	auditdomain "github.com/GestionAscensores/elevarapp/internal/audit/domain"
	billingrundomain "github.com/GestionAscensores/elevarapp/internal/billingrun/domain"
	"github.com/GestionAscensores/elevarapp/internal/clock"
	"github.com/GestionAscensores/elevarapp/internal/events"
	"github.com/GestionAscensores/elevarapp/internal/metrics"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	clock     clock.Clock
	generator billingrundomain.Generator
	outbox    *events.Outbox
	audit     auditdomain.Service
	metrics   *metrics.BillingMetrics
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Generator billingrundomain.Generator
	Outbox    *events.Outbox
	Audit     auditdomain.Service     `optional:"true"`
	Metrics   *metrics.BillingMetrics `optional:"true"`
}

func NewService(p ServiceParam) billingrundomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("billingrun.service"),

		clock:     p.Clock,
		generator: p.Generator,
		outbox:    p.Outbox,
		audit:     p.Audit,
		metrics:   p.Metrics,
	}
}

// CheckAndTrigger decides whether mass billing is due and runs it. The
// idempotency marker is persisted only after the generator reports success,
// so a failed run is retried on the next check, even the same day. The
// generator's own per-period uniqueness keeps those retries from double
// billing.
func (s *Service) CheckAndTrigger(ctx context.Context, today time.Time) (billingrundomain.CheckResult, error) {
	tenantID, err := s.tenantIDFromContext(ctx)
	if err != nil {
		return billingrundomain.CheckResult{}, err
	}
	if today.IsZero() {
		today = s.clock.Now()
	}

	state, err := s.loadState(ctx, tenantID)
	if err != nil {
		return billingrundomain.CheckResult{}, err
	}

	if !state.AutoBillingEnabled {
		return billingrundomain.CheckResult{Message: "auto billing disabled"}, nil
	}
	monthKey := today.Format("2006-01")
	if state.LastAutoBillingMonth != nil && *state.LastAutoBillingMonth == monthKey {
		return billingrundomain.CheckResult{Message: "already ran this month"}, nil
	}
	if today.Day() < state.AutoBillingDay {
		return billingrundomain.CheckResult{
			Message: fmt.Sprintf("not due until day %d", state.AutoBillingDay),
		}, nil
	}

	result, err := s.generator.Generate(ctx, tenantID, monthKey)
	if err != nil {
		s.log.Error("mass billing run failed",
			zap.String("month", monthKey),
			zap.Error(err),
		)
		return billingrundomain.CheckResult{
			Triggered: true,
			Message:   fmt.Sprintf("mass billing failed: %v", err),
		}, nil
	}
	if !result.Success() {
		// Partial failure: leave the marker unset so the next check retries
		// the clients that were missed.
		s.log.Warn("mass billing run incomplete",
			zap.String("month", monthKey),
			zap.Int("count", result.Count),
			zap.Strings("errors", result.Errors),
		)
		return billingrundomain.CheckResult{
			Triggered: true,
			Count:     result.Count,
			Message:   fmt.Sprintf("mass billing incomplete: %d invoices, %d errors", result.Count, len(result.Errors)),
		}, nil
	}

	if result.Count == 0 {
		// A clean zero-invoice run still counts as done for the month, but
		// it usually means every client was filtered out; keep it loud.
		s.log.Warn("mass billing produced zero invoices", zap.String("month", monthKey))
	}

	if err := s.markRan(ctx, tenantID, monthKey); err != nil {
		return billingrundomain.CheckResult{}, err
	}
	s.metrics.AddBillingRunInvoices(result.Count)

	if err := s.outbox.Publish(ctx, events.Event{
		TenantID:  tenantID,
		Type:      events.EventBillingRunCompleted,
		Payload:   events.BillingRunPayload{Month: monthKey, Count: result.Count}.ToMap(),
		DedupeKey: events.EventBillingRunCompleted + ":" + monthKey,
	}); err != nil {
		s.log.Warn("failed to publish billing run event", zap.Error(err))
	}
	if s.audit != nil {
		s.audit.Record(ctx, tenantID, auditdomain.Entry{
			Action:     auditdomain.ActionAutoBillingRun,
			TargetType: "billing_run",
			TargetID:   monthKey,
			Metadata:   map[string]any{"count": result.Count},
		})
	}

	message := fmt.Sprintf("mass billing completed: %d invoices", result.Count)
	if result.Count == 0 {
		message = "mass billing completed: no eligible clients"
	}
	return billingrundomain.CheckResult{
		Triggered: true,
		Success:   true,
		Count:     result.Count,
		Message:   message,
	}, nil
}

func (s *Service) GetSchedule(ctx context.Context) (billingrundomain.BillingScheduleState, error) {
	tenantID, err := s.tenantIDFromContext(ctx)
	if err != nil {
		return billingrundomain.BillingScheduleState{}, err
	}
	return s.loadState(ctx, tenantID)
}

func (s *Service) UpdateSchedule(ctx context.Context, req billingrundomain.UpdateScheduleRequest) (billingrundomain.BillingScheduleState, error) {
	tenantID, err := s.tenantIDFromContext(ctx)
	if err != nil {
		return billingrundomain.BillingScheduleState{}, err
	}
	if req.AutoBillingDay != nil && (*req.AutoBillingDay < 1 || *req.AutoBillingDay > 28) {
		return billingrundomain.BillingScheduleState{}, billingrundomain.ErrInvalidDay
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := s.loadStateTx(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if req.AutoBillingEnabled != nil {
			state.AutoBillingEnabled = *req.AutoBillingEnabled
		}
		if req.AutoBillingDay != nil {
			state.AutoBillingDay = *req.AutoBillingDay
		}
		return tx.Exec(
			`INSERT INTO billing_schedule_states (tenant_id, auto_billing_enabled, auto_billing_day, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (tenant_id) DO UPDATE SET
				auto_billing_enabled = excluded.auto_billing_enabled,
				auto_billing_day = excluded.auto_billing_day,
				updated_at = excluded.updated_at`,
			tenantID,
			state.AutoBillingEnabled,
			state.AutoBillingDay,
			s.clock.Now(),
		).Error
	})
	if err != nil {
		return billingrundomain.BillingScheduleState{}, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, tenantID, auditdomain.Entry{
			Action:     auditdomain.ActionScheduleChanged,
			TargetType: "billing_schedule",
		})
	}
	return s.loadState(ctx, tenantID)
}

// markRan persists the idempotency marker. Deliberately outside the
// generator's transactions: it must happen strictly after success.
func (s *Service) markRan(ctx context.Context, tenantID snowflake.ID, monthKey string) error {
	result := s.db.WithContext(ctx).Model(&billingrundomain.BillingScheduleState{}).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]any{
			"last_auto_billing_month": monthKey,
			"updated_at":              s.clock.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Without the marker the month re-runs on every sweep.
		s.log.Warn("billing schedule state missing, month marker not written",
			zap.String("tenant_id", tenantID.String()),
			zap.String("month", monthKey),
		)
	}
	return nil
}

func (s *Service) loadState(ctx context.Context, tenantID snowflake.ID) (billingrundomain.BillingScheduleState, error) {
	return s.loadStateTx(ctx, s.db, tenantID)
}

func (s *Service) loadStateTx(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID) (billingrundomain.BillingScheduleState, error) {
	var state billingrundomain.BillingScheduleState
	err := tx.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return billingrundomain.BillingScheduleState{
			TenantID:       tenantID,
			AutoBillingDay: 1,
		}, nil
	}
	if err != nil {
		return billingrundomain.BillingScheduleState{}, err
	}
	return state, nil
}

func (s *Service) tenantIDFromContext(ctx context.Context) (snowflake.ID, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return 0, billingrundomain.ErrInvalidTenant
	}
	return tenantID, nil
}
