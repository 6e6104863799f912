package server

import (
	"net/http"

	pricingdomain "github.com/GestionAscensores/elevarapp/internal/pricing/domain"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/gin-gonic/gin"
)

func (s *Server) ApplyMassPriceUpdate(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if !s.massUpdateLimiter.Allow(tenantID.String()) {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	var req pricingdomain.MassUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.pricingSvc.ApplyMassUpdate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (s *Server) ListPriceHistory(c *gin.Context) {
	req := pricingdomain.ListHistoryRequest{
		ClientID: c.Query("client_id"),
		Month:    c.Query("month"),
	}
	rows, err := s.pricingSvc.ListHistory(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows})
}
