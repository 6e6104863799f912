package render

import (
	"time"

	"github.com/shopspring/decimal"
)

// RenderInput is the deterministic input used for invoice rendering.
type RenderInput struct {
	Issuer  IssuerView
	Invoice InvoiceView
	Client  ClientView
	Items   []LineItemView
}

type IssuerView struct {
	Name        string
	CUIT        string
	PointOfSale int
}

type InvoiceView struct {
	Type          string
	Number        string
	Status        string
	Date          time.Time
	ServiceFrom   *time.Time
	ServiceTo     *time.Time
	NetAmount     decimal.Decimal
	IVAAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	CAE           string
	CAEExpiration *time.Time
	QRCodeData    string
}

type ClientView struct {
	Name    string
	CUIT    string
	Address string
}

type LineItemView struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	IVARate     decimal.Decimal
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}
