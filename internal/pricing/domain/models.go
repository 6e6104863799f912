package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// FrequencyAll selects every equipment row regardless of its configured
// revision frequency.
const FrequencyAll = "ALL"

// PriceHistory is the append-only audit record of one price change. Rows
// are never updated or deleted outside a full tenant purge.
type PriceHistory struct {
	ID               snowflake.ID    `gorm:"primaryKey"`
	TenantID         snowflake.ID    `gorm:"not null;index"`
	ClientID         snowflake.ID    `gorm:"not null;index"`
	EquipmentID      snowflake.ID    `gorm:"not null;index"`
	PreviousPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NewPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PercentageChange decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Month            string          `gorm:"type:varchar(7);not null;index"`
	UpdatedBy        string          `gorm:"type:text;not null"`
	IsMassUpdate     bool            `gorm:"not null;default:false"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PriceHistory) TableName() string { return "price_history" }

// MonthKey renders t as YYYY-MM in the tenant's civil calendar. The
// reference deployment is pinned to UTC-3, so activity crossing midnight
// UTC lands in the correct local month.
func MonthKey(t time.Time) string {
	return t.In(time.FixedZone("UTC-3", -3*60*60)).Format("2006-01")
}

type MassUpdateRequest struct {
	Percentage decimal.Decimal `json:"percentage"`
	Frequency  string          `json:"frequency"`
}

// MassUpdateResult reports one revision run. UpdatedClients counts clients
// scanned, not clients whose prices changed; Changes counts history rows.
type MassUpdateResult struct {
	UpdatedClients int    `json:"updated_clients"`
	Changes        int    `json:"changes"`
	Message        string `json:"message"`
}

type ListHistoryRequest struct {
	ClientID string
	Month    string
	Limit    int
}

// Service applies bulk price revisions atomically: every price write and
// every history insert of a run commits or rolls back together.
type Service interface {
	ApplyMassUpdate(ctx context.Context, req MassUpdateRequest) (MassUpdateResult, error)
	ListHistory(ctx context.Context, req ListHistoryRequest) ([]PriceHistory, error)
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidPercentage = errors.New("invalid_percentage")
	ErrInvalidFrequency  = errors.New("invalid_frequency")
	ErrInvalidClient     = errors.New("invalid_client")
)
