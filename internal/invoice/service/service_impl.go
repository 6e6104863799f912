package service

import (
	"context"
	"errors"
	"strings"
	"time"

	auditdomain "github.com/GestionAscensores/elevarapp/internal/audit/domain"
	clientdomain "github.com/GestionAscensores/elevarapp/internal/client/domain"
	"github.com/GestionAscensores/elevarapp/internal/clock"
	"github.com/GestionAscensores/elevarapp/internal/events"
	"github.com/GestionAscensores/elevarapp/internal/fiscal"
	invoicedomain "github.com/GestionAscensores/elevarapp/internal/invoice/domain"
	"github.com/GestionAscensores/elevarapp/internal/metrics"
	sequencedomain "github.com/GestionAscensores/elevarapp/internal/sequence/domain"
	taxcategorydomain "github.com/GestionAscensores/elevarapp/internal/taxcategory/domain"
	tenantdomain "github.com/GestionAscensores/elevarapp/internal/tenant/domain"
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

	genID       *snowflake.Node
	seq         sequencedomain.Allocator
	authorizer  fiscal.Authorizer
	clock       clock.Clock
	outbox      *events.Outbox
	audit       auditdomain.Service
	invalidator taxcategorydomain.Invalidator
	metrics     *metrics.BillingMetrics
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Seq         sequencedomain.Allocator
	Authorizer  fiscal.Authorizer
	Clock       clock.Clock
	Outbox      *events.Outbox
	Audit       auditdomain.Service           `optional:"true"`
	Invalidator taxcategorydomain.Invalidator `optional:"true"`
	Metrics     *metrics.BillingMetrics       `optional:"true"`
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:       p.GenID,
		seq:         p.Seq,
		authorizer:  p.Authorizer,
		clock:       p.Clock,
		outbox:      p.Outbox,
		audit:       p.Audit,
		invalidator: p.Invalidator,
		metrics:     p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	tenantID, err := s.tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !invoicedomain.ValidType(req.Type) {
		return nil, invoicedomain.ErrInvalidType
	}
	if req.Type.IsCreditNote() {
		// Credit notes are derived from approved documents, never created raw.
		return nil, invoicedomain.ErrInvalidType
	}
	clientID, err := parseID(req.ClientID, invoicedomain.ErrInvalidClient)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, invoicedomain.ErrInvalidItems
	}
	items, err := buildItems(s.genID, req.Items)
	if err != nil {
		return nil, err
	}

	tenant, err := s.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.checkClient(ctx, tenantID, clientID); err != nil {
		return nil, err
	}

	status := invoicedomain.StatusDraft
	if req.Type == invoicedomain.TypeQuote {
		status = invoicedomain.StatusQuote
	}
	date := req.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	net, iva, total := computeTotals(items)
	record := &invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		ClientID:      clientID,
		Type:          req.Type,
		Status:        status,
		PointOfSale:   tenant.PointOfSale,
		Date:          date,
		ServiceFrom:   req.ServiceFrom,
		ServiceTo:     req.ServiceTo,
		NetAmount:     net,
		IVAAmount:     iva,
		TotalAmount:   total,
		PaymentStatus: invoicedomain.PaymentPending,
		CreatedAt:     s.clock.Now(),
		UpdatedAt:     s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return s.insertItems(ctx, tx, record.ID, items)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, tenantID, record.ID)
}

func (s *Service) Update(ctx context.Context, id string, req invoicedomain.UpdateInvoiceRequest) (*invoicedomain.Invoice, error) {
	tenantID, invoiceID, err := s.scope(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.loadTx(ctx, tx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if !record.Editable() {
			return invoicedomain.ErrInvoiceNotEditable
		}

		updates := map[string]any{"updated_at": s.clock.Now()}
		if req.ClientID != "" {
			clientID, err := parseID(req.ClientID, invoicedomain.ErrInvalidClient)
			if err != nil {
				return err
			}
			if err := s.checkClient(ctx, tenantID, clientID); err != nil {
				return err
			}
			updates["client_id"] = clientID
		}
		if req.Date != nil {
			updates["date"] = *req.Date
		}
		if req.ServiceFrom != nil {
			updates["service_from"] = *req.ServiceFrom
		}
		if req.ServiceTo != nil {
			updates["service_to"] = *req.ServiceTo
		}

		if len(req.Items) > 0 {
			items, err := buildItems(s.genID, req.Items)
			if err != nil {
				return err
			}
			if err := tx.Where("invoice_id = ?", invoiceID).Delete(&invoicedomain.InvoiceItem{}).Error; err != nil {
				return err
			}
			if err := s.insertItems(ctx, tx, invoiceID, items); err != nil {
				return err
			}
			net, iva, total := computeTotals(items)
			updates["net_amount"] = net
			updates["iva_amount"] = iva
			updates["total_amount"] = total
		}

		return tx.Model(&invoicedomain.Invoice{}).
			Where("id = ? AND tenant_id = ?", invoiceID, tenantID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, tenantID, invoiceID)
}

// MakeProvisional assigns the internal draft number and freezes the
// document. The number is allocated at most once: re-promoting a reverted
// document keeps its original draft number.
func (s *Service) MakeProvisional(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	tenantID, invoiceID, err := s.scope(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.loadTx(ctx, tx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if record.Status != invoicedomain.StatusDraft && record.Status != invoicedomain.StatusQuote {
			return invoicedomain.ErrInvoiceNotEditable
		}

		updates := map[string]any{
			"status":     invoicedomain.StatusProvisional,
			"updated_at": s.clock.Now(),
		}
		if record.DraftNumber == nil {
			draftNumber, err := s.seq.NextTx(ctx, tx, tenantID, sequencedomain.SeriesDraft)
			if err != nil {
				return err
			}
			updates["draft_number"] = draftNumber
		}

		result := tx.Model(&invoicedomain.Invoice{}).
			Where("id = ? AND tenant_id = ? AND status IN ?", invoiceID, tenantID,
				[]invoicedomain.InvoiceStatus{invoicedomain.StatusDraft, invoicedomain.StatusQuote}).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return invoicedomain.ErrInvoiceNotEditable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, tenantID, invoiceID)
}

// RevertToDraft reopens a provisional or rejected document for editing. The
// draft number, once assigned, stays with the document.
func (s *Service) RevertToDraft(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	tenantID, invoiceID, err := s.scope(ctx, id)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).
		Where("id = ? AND tenant_id = ? AND status IN ?", invoiceID, tenantID,
			[]invoicedomain.InvoiceStatus{invoicedomain.StatusProvisional, invoicedomain.StatusRejected}).
		Updates(map[string]any{
			"status":           invoicedomain.StatusDraft,
			"rejection_reason": nil,
			"updated_at":       s.clock.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		record, err := s.load(ctx, tenantID, invoiceID)
		if err != nil {
			return nil, err
		}
		if record.Status == invoicedomain.StatusApproved {
			return nil, invoicedomain.ErrAlreadyApproved
		}
		return nil, invoicedomain.ErrNotRevertible
	}
	return s.load(ctx, tenantID, invoiceID)
}

// Approve submits the document to the fiscal authority and, only on
// success, assigns the fiscal number inside the same transaction that
// records the approval. The authorization call happens before the
// transaction opens so no store lock is held during external I/O.
func (s *Service) Approve(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	tenantID, invoiceID, err := s.scope(ctx, id)
	if err != nil {
		return nil, err
	}
	record, err := s.load(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	switch record.Status {
	case invoicedomain.StatusApproved:
		return nil, invoicedomain.ErrAlreadyApproved
	case invoicedomain.StatusDraft, invoicedomain.StatusProvisional:
	default:
		return nil, invoicedomain.ErrNotApprovable
	}
	if !record.Type.IsFiscal() {
		return nil, invoicedomain.ErrNotFiscalType
	}

	tenant, err := s.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result, err := s.authorizer.Authorize(ctx, buildAuthorizationRequest(tenant, record))
	if err != nil {
		if rejErr := s.reject(ctx, tenantID, record, err); rejErr != nil {
			s.log.Error("failed to record rejection",
				zap.String("invoice_id", invoiceID.String()),
				zap.Error(rejErr),
			)
			return nil, rejErr
		}
		return nil, err
	}

	var number int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		series := sequencedomain.FiscalSeries(record.PointOfSale, string(record.Type))
		number, err = s.seq.NextTx(ctx, tx, tenantID, series)
		if err != nil {
			return err
		}

		qrData, err := fiscal.BuildQRCodeData(
			tenant.CUIT,
			record.PointOfSale,
			string(record.Type),
			number,
			record.TotalAmount,
			result.AuthorizationCode,
			record.Date,
		)
		if err != nil {
			return err
		}

		update := tx.Model(&invoicedomain.Invoice{}).
			Where("id = ? AND tenant_id = ? AND status IN ? AND number IS NULL", invoiceID, tenantID,
				[]invoicedomain.InvoiceStatus{invoicedomain.StatusDraft, invoicedomain.StatusProvisional}).
			Updates(map[string]any{
				"status":         invoicedomain.StatusApproved,
				"number":         number,
				"cae":            result.AuthorizationCode,
				"cae_expiration": result.ExpirationDate,
				"qr_code_data":   qrData,
				"updated_at":     s.clock.Now(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			// Lost the race: roll everything back so the number is not consumed.
			return invoicedomain.ErrInvoiceNotEditable
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			TenantID:  tenantID,
			Type:      events.EventInvoiceApproved,
			Payload:   events.InvoicePayload{InvoiceID: invoiceID.String(), Type: string(record.Type), Number: number}.ToMap(),
			DedupeKey: events.EventInvoiceApproved + ":" + invoiceID.String(),
		}); err != nil {
			return err
		}
		if s.audit != nil {
			return s.audit.RecordTx(ctx, tx, tenantID, auditdomain.Entry{
				Action:     auditdomain.ActionInvoiceApproved,
				TargetType: "invoice",
				TargetID:   invoiceID.String(),
				Metadata: map[string]any{
					"type":   string(record.Type),
					"number": number,
					"cae":    result.AuthorizationCode,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(tenantID)
	}
	s.metrics.IncInvoiceApproved(string(record.Type))
	s.log.Info("invoice approved",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("type", string(record.Type)),
		zap.Int64("number", number),
	)
	return s.load(ctx, tenantID, invoiceID)
}

// CreateCreditNote derives the negative counterpart of an approved invoice.
// The original is never mutated.
func (s *Service) CreateCreditNote(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	tenantID, invoiceID, err := s.scope(ctx, id)
	if err != nil {
		return nil, err
	}
	original, err := s.load(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if original.Status != invoicedomain.StatusApproved {
		return nil, invoicedomain.ErrNotApproved
	}
	creditType, ok := original.Type.CreditNoteType()
	if !ok {
		return nil, invoicedomain.ErrNotFiscalType
	}

	relatedID := original.ID
	note := &invoicedomain.Invoice{
		ID:               s.genID.Generate(),
		TenantID:         tenantID,
		ClientID:         original.ClientID,
		Type:             creditType,
		Status:           invoicedomain.StatusDraft,
		PointOfSale:      original.PointOfSale,
		Date:             s.clock.Now(),
		ServiceFrom:      original.ServiceFrom,
		ServiceTo:        original.ServiceTo,
		NetAmount:        original.NetAmount.Neg(),
		IVAAmount:        original.IVAAmount.Neg(),
		TotalAmount:      original.TotalAmount.Neg(),
		RelatedInvoiceID: &relatedID,
		PaymentStatus:    invoicedomain.PaymentPending,
		CreatedAt:        s.clock.Now(),
		UpdatedAt:        s.clock.Now(),
	}
	items := make([]invoicedomain.InvoiceItem, 0, len(original.Items))
	for _, item := range original.Items {
		items = append(items, invoicedomain.InvoiceItem{
			ID:          s.genID.Generate(),
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Neg(),
			IVARate:     item.IVARate,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(note).Error; err != nil {
			return err
		}
		if err := s.insertItems(ctx, tx, note.ID, items); err != nil {
			return err
		}
		if s.audit != nil {
			return s.audit.RecordTx(ctx, tx, tenantID, auditdomain.Entry{
				Action:     auditdomain.ActionCreditNoteCreated,
				TargetType: "invoice",
				TargetID:   note.ID.String(),
				Metadata: map[string]any{
					"related_invoice_id": invoiceID.String(),
					"type":               string(creditType),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, tenantID, note.ID)
}

// MarkPaid updates the payment fields, the only mutation allowed on an
// approved document besides QR backfill.
func (s *Service) MarkPaid(ctx context.Context, id string, paidAt time.Time) (*invoicedomain.Invoice, error) {
	tenantID, invoiceID, err := s.scope(ctx, id)
	if err != nil {
		return nil, err
	}
	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}

	result := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).
		Where("id = ? AND tenant_id = ? AND status = ?", invoiceID, tenantID, invoicedomain.StatusApproved).
		Updates(map[string]any{
			"payment_status": invoicedomain.PaymentPaid,
			"payment_date":   paidAt,
			"updated_at":     s.clock.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.load(ctx, tenantID, invoiceID); err != nil {
			return nil, err
		}
		return nil, invoicedomain.ErrNotApproved
	}
	return s.load(ctx, tenantID, invoiceID)
}

func (s *Service) GetByID(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	tenantID, invoiceID, err := s.scope(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, tenantID, invoiceID)
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	tenantID, err := s.tenantIDFromContext(ctx)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	query := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).Where("tenant_id = ?", tenantID)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.ClientID != "" {
		clientID, err := parseID(req.ClientID, invoicedomain.ErrInvalidClient)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, err
		}
		query = query.Where("client_id = ?", clientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []invoicedomain.Invoice
	if err := query.Preload("Items").
		Order("date DESC, id DESC").
		Limit(limit).
		Offset(req.Offset).
		Find(&records).Error; err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}
	return invoicedomain.ListInvoiceResponse{Invoices: records, Total: total}, nil
}

func (s *Service) reject(ctx context.Context, tenantID snowflake.ID, record *invoicedomain.Invoice, cause error) error {
	reason := cause.Error()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&invoicedomain.Invoice{}).
			Where("id = ? AND tenant_id = ? AND status IN ?", record.ID, tenantID,
				[]invoicedomain.InvoiceStatus{invoicedomain.StatusDraft, invoicedomain.StatusProvisional}).
			Updates(map[string]any{
				"status":           invoicedomain.StatusRejected,
				"rejection_reason": reason,
				"updated_at":       s.clock.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if s.audit != nil {
			return s.audit.RecordTx(ctx, tx, tenantID, auditdomain.Entry{
				Action:     auditdomain.ActionInvoiceRejected,
				TargetType: "invoice",
				TargetID:   record.ID.String(),
				Metadata:   map[string]any{"reason": reason},
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.IncInvoiceRejected()
	s.log.Warn("invoice rejected by fiscal authority",
		zap.String("invoice_id", record.ID.String()),
		zap.String("reason", reason),
	)
	return nil
}

func (s *Service) scope(ctx context.Context, id string) (snowflake.ID, snowflake.ID, error) {
	tenantID, err := s.tenantIDFromContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	invoiceID, err := parseID(id, invoicedomain.ErrInvalidInvoiceID)
	if err != nil {
		return 0, 0, err
	}
	return tenantID, invoiceID, nil
}

func (s *Service) tenantIDFromContext(ctx context.Context) (snowflake.ID, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return 0, invoicedomain.ErrInvalidTenant
	}
	return tenantID, nil
}

func (s *Service) load(ctx context.Context, tenantID, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	return s.loadTx(ctx, s.db, tenantID, invoiceID)
}

func (s *Service) loadTx(ctx context.Context, tx *gorm.DB, tenantID, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	var record invoicedomain.Invoice
	err := tx.WithContext(ctx).Preload("Items").
		Where("id = ? AND tenant_id = ?", invoiceID, tenantID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Service) loadTenant(ctx context.Context, tenantID snowflake.ID) (*tenantdomain.Tenant, error) {
	var record tenantdomain.Tenant
	err := s.db.WithContext(ctx).Where("id = ?", tenantID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tenantdomain.ErrTenantNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Service) checkClient(ctx context.Context, tenantID, clientID snowflake.ID) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&clientdomain.Client{}).
		Where("id = ? AND tenant_id = ?", clientID, tenantID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return invoicedomain.ErrInvalidClient
	}
	return nil
}

func (s *Service) insertItems(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, items []invoicedomain.InvoiceItem) error {
	for i := range items {
		items[i].InvoiceID = invoiceID
		if err := tx.WithContext(ctx).Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func buildAuthorizationRequest(tenant *tenantdomain.Tenant, record *invoicedomain.Invoice) fiscal.AuthorizationRequest {
	req := fiscal.AuthorizationRequest{
		CUIT:         tenant.CUIT,
		PointOfSale:  record.PointOfSale,
		DocumentType: string(record.Type),
		Date:         record.Date,
		ServiceFrom:  record.ServiceFrom,
		ServiceTo:    record.ServiceTo,
		NetAmount:    record.NetAmount,
		IVAAmount:    record.IVAAmount,
		TotalAmount:  record.TotalAmount,
	}
	for _, item := range record.Items {
		req.Items = append(req.Items, fiscal.AuthorizationItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			IVARate:     item.IVARate,
		})
	}
	return req
}

func buildItems(genID *snowflake.Node, inputs []invoicedomain.ItemInput) ([]invoicedomain.InvoiceItem, error) {
	items := make([]invoicedomain.InvoiceItem, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input.Description) == "" {
			return nil, invoicedomain.ErrInvalidItems
		}
		if input.Quantity.IsZero() {
			return nil, invoicedomain.ErrInvalidItems
		}
		item := invoicedomain.InvoiceItem{
			ID:          genID.Generate(),
			Description: input.Description,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			IVARate:     input.IVARate,
		}
		if strings.TrimSpace(input.ProductID) != "" {
			productID, err := snowflake.ParseString(strings.TrimSpace(input.ProductID))
			if err != nil {
				return nil, invoicedomain.ErrInvalidItems
			}
			item.ProductID = &productID
		}
		items = append(items, item)
	}
	return items, nil
}

func computeTotals(items []invoicedomain.InvoiceItem) (net, iva, total decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	for _, item := range items {
		lineNet := item.Quantity.Mul(item.UnitPrice).Round(2)
		lineIVA := lineNet.Mul(item.IVARate).Div(hundred).Round(2)
		net = net.Add(lineNet)
		iva = iva.Add(lineIVA)
	}
	total = net.Add(iva)
	return net, iva, total
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}
