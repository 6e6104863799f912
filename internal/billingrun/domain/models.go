package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillingScheduleState is the per-tenant idempotency record for recurring
// mass billing. LastAutoBillingMonth is written only after a successful run.
type BillingScheduleState struct {
	TenantID             snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	AutoBillingEnabled   bool         `gorm:"not null;default:false"`
	AutoBillingDay       int          `gorm:"not null;default:1"`
	LastAutoBillingMonth *string      `gorm:"type:varchar(7)"`
	UpdatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BillingScheduleState) TableName() string { return "billing_schedule_states" }

// GenerateResult reports one mass-billing run.
type GenerateResult struct {
	Count  int      `json:"count"`
	Errors []string `json:"errors,omitempty"`
}

// Success reports whether every eligible client was billed.
func (r GenerateResult) Success() bool { return len(r.Errors) == 0 }

// Generator creates one invoice per eligible recurring client for the given
// YYYY-MM period. It must be idempotent per period: re-running after a
// partial failure only bills the clients that were missed.
type Generator interface {
	Generate(ctx context.Context, tenantID snowflake.ID, period string) (GenerateResult, error)
}

// CheckResult is the structured outcome of one scheduler check.
type CheckResult struct {
	Triggered bool   `json:"triggered"`
	Success   bool   `json:"success"`
	Count     int    `json:"count"`
	Message   string `json:"message"`
}

type UpdateScheduleRequest struct {
	AutoBillingEnabled *bool `json:"auto_billing_enabled"`
	AutoBillingDay     *int  `json:"auto_billing_day"`
}

// Service gates the recurring mass-billing trigger: at most one successful
// run per tenant per calendar month, retried until it succeeds.
type Service interface {
	CheckAndTrigger(ctx context.Context, today time.Time) (CheckResult, error)
	GetSchedule(ctx context.Context) (BillingScheduleState, error)
	UpdateSchedule(ctx context.Context, req UpdateScheduleRequest) (BillingScheduleState, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidDay    = errors.New("invalid_auto_billing_day")
)
