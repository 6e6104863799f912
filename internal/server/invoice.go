package server

import (
	"net/http"
	"time"

	invoicedomain "github.com/GestionAscensores/elevarapp/internal/invoice/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "invoice": record})
}

func (s *Server) GetInvoice(c *gin.Context) {
	record, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": record})
}

func (s *Server) ListInvoices(c *gin.Context) {
	req := invoicedomain.ListInvoiceRequest{
		Status:   invoicedomain.InvoiceStatus(c.Query("status")),
		Type:     invoicedomain.InvoiceType(c.Query("type")),
		ClientID: c.Query("client_id"),
	}
	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req invoicedomain.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, err := s.invoiceSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": record})
}

func (s *Server) MakeInvoiceProvisional(c *gin.Context) {
	record, err := s.invoiceSvc.MakeProvisional(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": record})
}

func (s *Server) RevertInvoiceToDraft(c *gin.Context) {
	record, err := s.invoiceSvc.RevertToDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": record})
}

func (s *Server) ApproveInvoice(c *gin.Context) {
	record, err := s.invoiceSvc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": record})
}

func (s *Server) CreateCreditNote(c *gin.Context) {
	record, err := s.invoiceSvc.CreateCreditNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "invoice": record})
}

type markPaidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	var req markPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	paidAt := time.Time{}
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	record, err := s.invoiceSvc.MarkPaid(c.Request.Context(), c.Param("id"), paidAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": record})
}
