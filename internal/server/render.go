package server

import (
	"fmt"
	"net/http"

	clientdomain "github.com/GestionAscensores/elevarapp/internal/client/domain"
	invoicedomain "github.com/GestionAscensores/elevarapp/internal/invoice/domain"
	"github.com/GestionAscensores/elevarapp/internal/invoice/render"
	tenantdomain "github.com/GestionAscensores/elevarapp/internal/tenant/domain"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/gin-gonic/gin"
)

// RenderInvoiceHTML returns a printable view of the document. Fiscal
// documents show the assigned number, CAE and QR data; drafts render with
// their draft number or a dash.
func (s *Server) RenderInvoiceHTML(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	record, err := s.invoiceSvc.GetByID(ctx, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var tenant tenantdomain.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	var client clientdomain.Client
	if err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", record.ClientID, tenantID).
		First(&client).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	html, err := s.renderer.RenderHTML(buildRenderInput(&tenant, &client, record))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func buildRenderInput(tenant *tenantdomain.Tenant, client *clientdomain.Client, record *invoicedomain.Invoice) render.RenderInput {
	input := render.RenderInput{
		Issuer: render.IssuerView{
			Name:        tenant.Name,
			CUIT:        tenant.CUIT,
			PointOfSale: record.PointOfSale,
		},
		Invoice: render.InvoiceView{
			Type:          string(record.Type),
			Number:        documentNumber(record),
			Status:        string(record.Status),
			Date:          record.Date,
			ServiceFrom:   record.ServiceFrom,
			ServiceTo:     record.ServiceTo,
			NetAmount:     record.NetAmount,
			IVAAmount:     record.IVAAmount,
			TotalAmount:   record.TotalAmount,
			CAEExpiration: record.CAEExpiration,
		},
		Client: render.ClientView{Name: client.Name},
	}
	if record.CAE != nil {
		input.Invoice.CAE = *record.CAE
	}
	if record.QRCodeData != nil {
		input.Invoice.QRCodeData = *record.QRCodeData
	}
	if client.CUIT != nil {
		input.Client.CUIT = *client.CUIT
	}
	if client.Address != nil {
		input.Client.Address = *client.Address
	}
	for _, item := range record.Items {
		input.Items = append(input.Items, render.LineItemView{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			IVARate:     item.IVARate,
		})
	}
	return input
}

func documentNumber(record *invoicedomain.Invoice) string {
	if record.Number != nil {
		return fmt.Sprintf("%04d-%08d", record.PointOfSale, *record.Number)
	}
	if record.DraftNumber != nil {
		return fmt.Sprintf("B-%08d", *record.DraftNumber)
	}
	return ""
}
