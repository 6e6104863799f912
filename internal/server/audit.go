package server

import (
	"net/http"
	"strconv"

	auditdomain "github.com/GestionAscensores/elevarapp/internal/audit/domain"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListAuditLog(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	filter := auditdomain.ListFilter{
		TenantID:   tenantID,
		Action:     c.Query("action"),
		TargetType: c.Query("target_type"),
		TargetID:   c.Query("target_id"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	entries, err := s.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
