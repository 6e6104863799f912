package render

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRenderHTMLApprovedInvoice(t *testing.T) {
	caeExp := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	html, err := NewRenderer().RenderHTML(RenderInput{
		Issuer: IssuerView{Name: "Demo Ascensores", CUIT: "30-71234567-8", PointOfSale: 4},
		Invoice: InvoiceView{
			Type:          "FACTURA_C",
			Number:        "0004-00000123",
			Status:        "APPROVED",
			Date:          time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			ServiceFrom:   &from,
			ServiceTo:     &to,
			NetAmount:     decimal.RequireFromString("170000"),
			IVAAmount:     decimal.Zero,
			TotalAmount:   decimal.RequireFromString("170000"),
			CAE:           "74123456789012",
			CAEExpiration: &caeExp,
			QRCodeData:    "https://www.afip.gob.ar/fe/qr/?p=abc",
		},
		Client: ClientView{Name: "Consorcio Norte", CUIT: "30-99887766-5"},
		Items: []LineItemView{
			{
				Description: "Abono mantenimiento Ascensor (2024-06)",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.RequireFromString("85000"),
				IVARate:     decimal.Zero,
			},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Demo Ascensores",
		"CUIT: 30-71234567-8",
		"Punto de venta: 0004",
		"0004-00000123",
		"Fecha: 10/06/2024",
		"01/06/2024 - 30/06/2024",
		"Abono mantenimiento Ascensor (2024-06)",
		"$ 170000.00",
		"CAE: 74123456789012",
		"Vencimiento: 20/06/2024",
		"https://www.afip.gob.ar/fe/qr/?p=abc",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected rendered html to contain %q", want)
		}
	}
}

func TestRenderHTMLDraftOmitsFiscalData(t *testing.T) {
	html, err := NewRenderer().RenderHTML(RenderInput{
		Issuer: IssuerView{Name: "Demo Ascensores", CUIT: "30-71234567-8", PointOfSale: 1},
		Invoice: InvoiceView{
			Type:        "FACTURA_B",
			Status:      "DRAFT",
			Date:        time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			NetAmount:   decimal.RequireFromString("100.01"),
			IVAAmount:   decimal.RequireFromString("21.00"),
			TotalAmount: decimal.RequireFromString("121.01"),
		},
		Client: ClientView{Name: "Consorcio Sur"},
		Items: []LineItemView{
			{
				Description: "Reparación puerta",
				Quantity:    decimal.NewFromInt(3),
				UnitPrice:   decimal.RequireFromString("33.335"),
				IVARate:     decimal.NewFromInt(21),
			},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Contains(html, "CAE:") {
		t.Fatal("draft must not show a CAE")
	}
	if strings.Contains(html, "Período de servicio") {
		t.Fatal("invoice without service dates must not show a period section")
	}
	// Missing number renders as a placeholder.
	if !strings.Contains(html, "<strong>-</strong>") {
		t.Fatal("expected placeholder document number")
	}
	if !strings.Contains(html, "$ 100.01") || !strings.Contains(html, "$ 121.01") {
		t.Fatal("expected totals in output")
	}
	if !strings.Contains(html, "21%") {
		t.Fatal("expected IVA rate in output")
	}
}
