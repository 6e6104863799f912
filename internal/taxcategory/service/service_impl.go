package service

import (
	"context"
	"errors"
	"time"

	"github.com/GestionAscensores/elevarapp/internal/cache"
	"github.com/GestionAscensores/elevarapp/internal/clock"
	"github.com/GestionAscensores/elevarapp/internal/config"
	invoicedomain "github.com/GestionAscensores/elevarapp/internal/invoice/domain"
	taxcategorydomain "github.com/GestionAscensores/elevarapp/internal/taxcategory/domain"
	tenantdomain "github.com/GestionAscensores/elevarapp/internal/tenant/domain"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fetchBuffer widens the candidate query below the window start so invoices
// whose accrual period precedes their emission date still surface.
const fetchBuffer = 6 // months

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	clock    clock.Clock
	cache    cache.Cache[snowflake.ID, taxcategorydomain.Classification]
	cacheTTL time.Duration
	scale    []taxcategorydomain.Category
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Cfg   config.Config
}

func NewService(p ServiceParam) taxcategorydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("taxcategory.service"),

		clock:    p.Clock,
		cache:    cache.NewTTLCache[snowflake.ID, taxcategorydomain.Classification](),
		cacheTTL: p.Cfg.TaxCategoryCacheTTL,
		scale:    taxcategorydomain.DefaultScale,
	}
}

// Classify derives the trailing 12-month accrual revenue and maps it onto
// the bracket scale. Results are cached per tenant until the TTL elapses or
// Invalidate is called.
func (s *Service) Classify(ctx context.Context, req taxcategorydomain.ClassifyRequest) (taxcategorydomain.Classification, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return taxcategorydomain.Classification{}, taxcategorydomain.ErrInvalidTenant
	}

	// Only the "as of now" classification is cacheable; historical asOf
	// queries always recompute.
	cacheable := req.AsOf == nil
	if cacheable {
		if cached, hit := s.cache.Get(tenantID); hit {
			return cached, nil
		}
	}

	asOf := s.clock.Now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	windowStart := asOf.AddDate(-1, 0, 0)
	bufferStart := windowStart.AddDate(0, -fetchBuffer, 0)

	var tenant tenantdomain.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return taxcategorydomain.Classification{}, taxcategorydomain.ErrTenantNotFound
		}
		return taxcategorydomain.Classification{}, err
	}

	var candidates []invoicedomain.Invoice
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND type NOT IN ? AND date >= ? AND date <= ?",
			tenantID,
			invoicedomain.StatusApproved,
			[]invoicedomain.InvoiceType{invoicedomain.TypeQuote, invoicedomain.TypeDraft},
			bufferStart,
			asOf,
		).
		Find(&candidates).Error
	if err != nil {
		return taxcategorydomain.Classification{}, err
	}

	gross := decimal.Zero
	for i := range candidates {
		inv := &candidates[i]
		effective := taxcategorydomain.EffectiveDate(inv)
		if effective.Before(windowStart) || effective.After(asOf) {
			continue
		}
		if inv.Type.IsCreditNote() {
			// Credit note amounts are stored negative; Abs keeps the
			// subtraction correct regardless of stored sign.
			gross = gross.Sub(inv.TotalAmount.Abs())
		} else {
			gross = gross.Add(inv.TotalAmount)
		}
	}

	current, next, matched := taxcategorydomain.MatchCategory(s.scale, gross)
	classification := taxcategorydomain.Classification{
		CategoryCode:   current.Code,
		CategoryLimit:  current.Limit,
		GrossRevenue:   gross,
		ServiceCeiling: taxcategorydomain.ServiceCeiling,
		IsExcluded:     !matched,
		WindowStart:    windowStart,
		WindowEnd:      asOf,
	}
	if next != nil {
		classification.NextCategoryCode = next.Code
		classification.NextCategoryLimit = next.Limit
	}
	if tenant.RegimeType == tenantdomain.RegimeTypeServices && gross.GreaterThan(taxcategorydomain.ServiceCeiling) {
		// Nominal bracket may still match, but service revenue past the
		// ceiling forces migration to the general regime.
		classification.IsExcluded = true
	}

	if cacheable {
		s.cache.Set(tenantID, classification, s.cacheTTL)
	}
	return classification, nil
}

// Invalidate drops the cached classification for a tenant. Called on every
// invoice approval and on regime configuration changes.
func (s *Service) Invalidate(tenantID snowflake.ID) {
	s.cache.Delete(tenantID)
}
