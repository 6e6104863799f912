package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Series identifies one independent counter within a tenant.
type Series string

const (
	// SeriesDraft numbers provisional documents, one counter per tenant.
	SeriesDraft Series = "draft"
	// SeriesReceipt numbers payment receipts, one counter per tenant.
	SeriesReceipt Series = "receipt"
)

// FiscalSeries builds the series key for fiscal numbering. Each point of
// sale and document type carries its own gapless counter.
func FiscalSeries(pointOfSale int, docType string) Series {
	return Series(fmt.Sprintf("fiscal:%04d:%s", pointOfSale, docType))
}

// SequenceCounter is the store-backed counter row. It is mutated only inside
// the transaction that consumes the next value, so the row lock serializes
// concurrent callers.
type SequenceCounter struct {
	TenantID  snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Series    Series       `gorm:"primaryKey;type:text"`
	LastValue int64        `gorm:"not null;default:0"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SequenceCounter) TableName() string { return "sequence_counters" }

// Allocator hands out the next value of a per-tenant series. NextTx must be
// called with the caller's open transaction; if that transaction rolls back
// the increment is rolled back with it and no value is consumed.
type Allocator interface {
	NextTx(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, series Series) (int64, error)
}

// Service is the package alias for Allocator.
type Service = Allocator

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidSeries      = errors.New("invalid_series")
	ErrMissingTransaction = errors.New("missing_transaction")
	ErrCounterConflict    = errors.New("sequence_counter_conflict")
)
