package scheduler

import (
	"context"
	"time"

	billingrundomain "github.com/GestionAscensores/elevarapp/internal/billingrun/domain"
	"github.com/GestionAscensores/elevarapp/internal/clock"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepInterval = time.Hour

// Scheduler periodically sweeps every tenant with auto billing enabled and
// asks the billing run service whether a run is due. The service owns all
// the due-date and idempotency logic; the scheduler only supplies the tick.
type Scheduler struct {
	db  *gorm.DB
	log *zap.Logger

	clock      clock.Clock
	billingRun billingrundomain.Service

	cancel context.CancelFunc
	done   chan struct{}
}

type SchedulerParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	BillingRun billingrundomain.Service
}

func NewScheduler(p SchedulerParam) *Scheduler {
	return &Scheduler{
		db:  p.DB,
		log: p.Log.Named("scheduler"),

		clock:      p.Clock,
		billingRun: p.BillingRun,
	}
}

// Start launches the sweep loop. The first sweep runs immediately so a
// restart never delays an overdue billing run by a full interval.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Scheduler) sweep(ctx context.Context) {
	tenantIDs, err := s.fetchEnabledTenants(ctx)
	if err != nil {
		s.log.Error("failed to list auto billing tenants", zap.Error(err))
		return
	}

	now := s.clock.Now()
	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			return
		}
		tenantCtx := tenantcontext.WithTenantID(ctx, tenantID)
		result, err := s.billingRun.CheckAndTrigger(tenantCtx, now)
		if err != nil {
			s.log.Error("auto billing check failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		if result.Triggered {
			s.log.Info("auto billing check",
				zap.String("tenant_id", tenantID.String()),
				zap.Bool("success", result.Success),
				zap.Int("count", result.Count),
				zap.String("message", result.Message),
			)
		}
	}
}

func (s *Scheduler) fetchEnabledTenants(ctx context.Context) ([]snowflake.ID, error) {
	var tenantIDs []snowflake.ID
	err := s.db.WithContext(ctx).Raw(
		`SELECT tenant_id
		 FROM billing_schedule_states
		 WHERE auto_billing_enabled = true
		 ORDER BY tenant_id`,
	).Scan(&tenantIDs).Error
	if err != nil {
		return nil, err
	}
	return tenantIDs, nil
}
