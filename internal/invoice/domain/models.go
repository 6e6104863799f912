package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceType is the fiscal document kind.
type InvoiceType string

const (
	TypeFacturaA InvoiceType = "FACTURA_A"
	TypeFacturaB InvoiceType = "FACTURA_B"
	TypeFacturaC InvoiceType = "FACTURA_C"
	TypeNCA      InvoiceType = "NCA"
	TypeNCB      InvoiceType = "NCB"
	TypeNCC      InvoiceType = "NCC"
	TypeQuote    InvoiceType = "QUOTE"
	TypeDraft    InvoiceType = "DRAFT"
)

// InvoiceStatus is the lifecycle state of a document.
type InvoiceStatus string

const (
	StatusDraft       InvoiceStatus = "DRAFT"
	StatusQuote       InvoiceStatus = "QUOTE"
	StatusProvisional InvoiceStatus = "PROVISIONAL"
	StatusApproved    InvoiceStatus = "APPROVED"
	StatusRejected    InvoiceStatus = "REJECTED"
)

// PaymentStatus tracks collection independently of the fiscal lifecycle.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// ValidType reports whether value names a known document kind.
func ValidType(value InvoiceType) bool {
	switch value {
	case TypeFacturaA, TypeFacturaB, TypeFacturaC, TypeNCA, TypeNCB, TypeNCC, TypeQuote, TypeDraft:
		return true
	}
	return false
}

// IsCreditNote reports whether t is a credit-note kind. Credit notes carry a
// negative economic effect and always reference an original document.
func (t InvoiceType) IsCreditNote() bool {
	return t == TypeNCA || t == TypeNCB || t == TypeNCC
}

// IsFiscal reports whether t is submitted to the fiscal authority.
func (t InvoiceType) IsFiscal() bool {
	switch t {
	case TypeFacturaA, TypeFacturaB, TypeFacturaC, TypeNCA, TypeNCB, TypeNCC:
		return true
	}
	return false
}

// CreditNoteType returns the negative counterpart of a standard document.
func (t InvoiceType) CreditNoteType() (InvoiceType, bool) {
	switch t {
	case TypeFacturaA:
		return TypeNCA, true
	case TypeFacturaB:
		return TypeNCB, true
	case TypeFacturaC:
		return TypeNCC, true
	}
	return "", false
}

// Invoice is a fiscal document, quote or internal draft. An APPROVED invoice
// is immutable except for payment fields and QR backfill.
type Invoice struct {
	ID               snowflake.ID    `gorm:"primaryKey"`
	TenantID         snowflake.ID    `gorm:"not null;index"`
	ClientID         snowflake.ID    `gorm:"not null;index"`
	Type             InvoiceType     `gorm:"type:text;not null"`
	Status           InvoiceStatus   `gorm:"type:text;not null;index"`
	PointOfSale      int             `gorm:"not null"`
	Number           *int64          `gorm:"index"`
	DraftNumber      *int64          `gorm:"index"`
	Date             time.Time       `gorm:"not null"`
	ServiceFrom      *time.Time      ``
	ServiceTo        *time.Time      ``
	NetAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IVAAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null;column:iva_amount"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CAE              *string         `gorm:"type:varchar(20);column:cae"`
	CAEExpiration    *time.Time      `gorm:"column:cae_expiration"`
	QRCodeData       *string         `gorm:"type:text;column:qr_code_data"`
	RelatedInvoiceID *snowflake.ID   `gorm:"index"`
	RejectionReason  *string         `gorm:"type:text"`
	BillingPeriod    *string         `gorm:"type:varchar(7);index"`
	PaymentStatus    PaymentStatus   `gorm:"type:text;not null;default:'PENDING'"`
	PaymentDate      *time.Time      ``
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one line of an invoice. Owned exclusively by its invoice
// and deleted with it.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	InvoiceID   snowflake.ID    `gorm:"not null;index"`
	ProductID   *snowflake.ID   ``
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IVARate     decimal.Decimal `gorm:"type:decimal(5,2);not null;column:iva_rate"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// Editable reports whether line items and amounts may still change.
func (i *Invoice) Editable() bool {
	return i.Status == StatusDraft || i.Status == StatusQuote
}
