package service

import (
	"context"
	"errors"
	"testing"

	sequencedomain "github.com/GestionAscensores/elevarapp/internal/sequence/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNextTxIsGapless(t *testing.T) {
	db := setupSequenceTestDB(t)
	svc := &Service{log: zap.NewNop()}

	for want := int64(1); want <= 5; want++ {
		var got int64
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			got, err = svc.NextTx(context.Background(), tx, 1, sequencedomain.SeriesDraft)
			return err
		})
		if err != nil {
			t.Fatalf("next value: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestNextTxSeriesAreIndependent(t *testing.T) {
	db := setupSequenceTestDB(t)
	svc := &Service{log: zap.NewNop()}

	fiscal := sequencedomain.FiscalSeries(1, "FACTURA_B")
	allocate(t, db, svc, 1, sequencedomain.SeriesDraft)
	allocate(t, db, svc, 1, sequencedomain.SeriesDraft)

	if got := allocate(t, db, svc, 1, fiscal); got != 1 {
		t.Fatalf("expected fiscal series to start at 1, got %d", got)
	}
	if got := allocate(t, db, svc, 2, sequencedomain.SeriesDraft); got != 1 {
		t.Fatalf("expected other tenant to start at 1, got %d", got)
	}
	if got := allocate(t, db, svc, 1, sequencedomain.SeriesDraft); got != 3 {
		t.Fatalf("expected draft series to continue at 3, got %d", got)
	}
}

func TestNextTxRollbackConsumesNothing(t *testing.T) {
	db := setupSequenceTestDB(t)
	svc := &Service{log: zap.NewNop()}

	allocate(t, db, svc, 1, sequencedomain.SeriesDraft)

	sentinel := errors.New("abort")
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.NextTx(context.Background(), tx, 1, sequencedomain.SeriesDraft); err != nil {
			return err
		}
		return sentinel
	})
	if err == nil {
		t.Fatal("expected rollback")
	}

	if got := allocate(t, db, svc, 1, sequencedomain.SeriesDraft); got != 2 {
		t.Fatalf("expected 2 after rolled back allocation, got %d", got)
	}
}

func TestNextTxValidation(t *testing.T) {
	db := setupSequenceTestDB(t)
	svc := &Service{log: zap.NewNop()}

	if _, err := svc.NextTx(context.Background(), nil, 1, sequencedomain.SeriesDraft); err != sequencedomain.ErrMissingTransaction {
		t.Fatalf("expected missing transaction, got %v", err)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.NextTx(context.Background(), tx, 0, sequencedomain.SeriesDraft)
		return err
	})
	if err != sequencedomain.ErrInvalidTenant {
		t.Fatalf("expected invalid tenant, got %v", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.NextTx(context.Background(), tx, 1, " ")
		return err
	})
	if err != sequencedomain.ErrInvalidSeries {
		t.Fatalf("expected invalid series, got %v", err)
	}
}

func allocate(t *testing.T, db *gorm.DB, svc *Service, tenantID snowflake.ID, series sequencedomain.Series) int64 {
	t.Helper()
	var got int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		got, err = svc.NextTx(context.Background(), tx, tenantID, series)
		return err
	})
	if err != nil {
		t.Fatalf("next value: %v", err)
	}
	return got
}

func setupSequenceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE sequence_counters (
			tenant_id BIGINT NOT NULL,
			series TEXT NOT NULL,
			last_value BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (tenant_id, series)
		)`,
	).Error; err != nil {
		t.Fatalf("create sequence_counters: %v", err)
	}
	return db
}
