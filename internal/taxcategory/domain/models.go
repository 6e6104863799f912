package domain

import (
	"context"
	"errors"
	"time"

	invoicedomain "github.com/GestionAscensores/elevarapp/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Category is one bracket of the simplified-regime revenue scale.
type Category struct {
	Code  string
	Limit decimal.Decimal
}

// CodeExcluded is the sentinel category for revenue above every bracket.
const CodeExcluded = "EXCLUDED"

// DefaultScale is the ordered bracket table, lowest limit first. Amounts are
// annual gross revenue ceilings in pesos.
var DefaultScale = []Category{
	{Code: "A", Limit: decimal.NewFromInt(6_450_000)},
	{Code: "B", Limit: decimal.NewFromInt(9_450_000)},
	{Code: "C", Limit: decimal.NewFromInt(13_250_000)},
	{Code: "D", Limit: decimal.NewFromInt(16_450_000)},
	{Code: "E", Limit: decimal.NewFromInt(19_350_000)},
	{Code: "F", Limit: decimal.NewFromInt(24_250_000)},
	{Code: "G", Limit: decimal.NewFromInt(29_000_000)},
	{Code: "H", Limit: decimal.NewFromInt(44_000_000)},
	{Code: "I", Limit: decimal.NewFromInt(49_250_000)},
	{Code: "J", Limit: decimal.NewFromInt(56_400_000)},
	{Code: "K", Limit: decimal.NewFromInt(68_000_000)},
}

// ServiceCeiling is the highest bracket open to service-based tenants.
// Service revenue beyond it forces migration to the general regime.
var ServiceCeiling = decimal.NewFromInt(44_000_000)

// Classification is the derived tax position of a tenant.
type Classification struct {
	CategoryCode      string          `json:"category_code"`
	CategoryLimit     decimal.Decimal `json:"category_limit"`
	NextCategoryCode  string          `json:"next_category_code,omitempty"`
	NextCategoryLimit decimal.Decimal `json:"next_category_limit,omitempty"`
	GrossRevenue      decimal.Decimal `json:"gross_revenue"`
	ServiceCeiling    decimal.Decimal `json:"service_ceiling"`
	IsExcluded        bool            `json:"is_excluded"`
	WindowStart       time.Time       `json:"window_start"`
	WindowEnd         time.Time       `json:"window_end"`
}

// EffectiveDate is the date an invoice contributes on: the end of its
// accrual period when present, else its start, else the emission date.
func EffectiveDate(inv *invoicedomain.Invoice) time.Time {
	if inv.ServiceTo != nil {
		return *inv.ServiceTo
	}
	if inv.ServiceFrom != nil {
		return *inv.ServiceFrom
	}
	return inv.Date
}

// MatchCategory returns the first bracket whose limit is >= gross (inclusive
// boundary) plus the following bracket, or the EXCLUDED sentinel.
func MatchCategory(scale []Category, gross decimal.Decimal) (current Category, next *Category, matched bool) {
	for i, category := range scale {
		if category.Limit.GreaterThanOrEqual(gross) {
			if i+1 < len(scale) {
				n := scale[i+1]
				next = &n
			}
			return category, next, true
		}
	}
	return Category{Code: CodeExcluded}, nil, false
}

type ClassifyRequest struct {
	AsOf *time.Time
}

// Service derives the rolling 12-month classification. Results are cached
// per tenant; Invalidate must be called when new invoices are approved or
// the tenant's regime configuration changes.
type Service interface {
	Classify(ctx context.Context, req ClassifyRequest) (Classification, error)
	Invalidate(tenantID snowflake.ID)
}

// Invalidator is the narrow hook handed to invoice approval.
type Invalidator interface {
	Invalidate(tenantID snowflake.ID)
}

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrTenantNotFound = errors.New("tenant_not_found")
)
