package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type ItemInput struct {
	ProductID   string          `json:"product_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IVARate     decimal.Decimal `json:"iva_rate"`
}

type CreateInvoiceRequest struct {
	ClientID    string      `json:"client_id"`
	Type        InvoiceType `json:"type"`
	Date        time.Time   `json:"date"`
	ServiceFrom *time.Time  `json:"service_from"`
	ServiceTo   *time.Time  `json:"service_to"`
	Items       []ItemInput `json:"items"`
}

type UpdateInvoiceRequest struct {
	ClientID    string      `json:"client_id"`
	Date        *time.Time  `json:"date"`
	ServiceFrom *time.Time  `json:"service_from"`
	ServiceTo   *time.Time  `json:"service_to"`
	Items       []ItemInput `json:"items"`
}

type ListInvoiceRequest struct {
	Status   InvoiceStatus
	Type     InvoiceType
	ClientID string
	Limit    int
	Offset   int
}

type ListInvoiceResponse struct {
	Invoices []Invoice `json:"invoices"`
	Total    int64     `json:"total"`
}

// Service owns the document lifecycle. Exactly one fiscal number is consumed
// per approved document; authorization failures consume nothing.
type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (*Invoice, error)
	MakeProvisional(ctx context.Context, id string) (*Invoice, error)
	RevertToDraft(ctx context.Context, id string) (*Invoice, error)
	Approve(ctx context.Context, id string) (*Invoice, error)
	CreateCreditNote(ctx context.Context, id string) (*Invoice, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
}

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidInvoiceID   = errors.New("invalid_invoice_id")
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidType        = errors.New("invalid_invoice_type")
	ErrInvalidItems       = errors.New("invalid_invoice_items")
	ErrInvoiceNotFound    = errors.New("invoice_not_found")
	ErrInvoiceNotEditable = errors.New("invoice_not_editable")
	ErrAlreadyApproved    = errors.New("invoice_already_approved")
	ErrNotApprovable      = errors.New("invoice_not_approvable")
	ErrNotApproved        = errors.New("invoice_not_approved")
	ErrNotFiscalType      = errors.New("invoice_not_fiscal_type")
	ErrNotRevertible      = errors.New("invoice_not_revertible")
)
