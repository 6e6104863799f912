package service

import (
	"context"
	"strings"

	sequencedomain "github.com/GestionAscensores/elevarapp/internal/sequence/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	log *zap.Logger
}

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

func NewService(p ServiceParam) sequencedomain.Allocator {
	return &Service{
		log: p.Log.Named("sequence.service"),
	}
}

// NextTx increments and reads the counter row inside the caller's
// transaction. The UPDATE takes the row lock, so two concurrent callers for
// the same (tenant, series) serialize on the store and never observe the
// same value. The counter row is created lazily at zero.
func (s *Service) NextTx(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, series sequencedomain.Series) (int64, error) {
	if tx == nil {
		return 0, sequencedomain.ErrMissingTransaction
	}
	if tenantID == 0 {
		return 0, sequencedomain.ErrInvalidTenant
	}
	if strings.TrimSpace(string(series)) == "" {
		return 0, sequencedomain.ErrInvalidSeries
	}

	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO sequence_counters (tenant_id, series, last_value, updated_at)
		 VALUES (?, ?, 0, CURRENT_TIMESTAMP)
		 ON CONFLICT (tenant_id, series) DO NOTHING`,
		tenantID,
		series,
	).Error; err != nil {
		return 0, err
	}

	result := tx.WithContext(ctx).Exec(
		`UPDATE sequence_counters
		 SET last_value = last_value + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE tenant_id = ? AND series = ?`,
		tenantID,
		series,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, sequencedomain.ErrCounterConflict
	}

	var value int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT last_value
		 FROM sequence_counters
		 WHERE tenant_id = ? AND series = ?`,
		tenantID,
		series,
	).Scan(&value).Error; err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, sequencedomain.ErrCounterConflict
	}
	return value, nil
}
