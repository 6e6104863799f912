package server

import (
	"strings"

	"github.com/GestionAscensores/elevarapp/internal/auditcontext"
	"github.com/GestionAscensores/elevarapp/internal/tenantcontext"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const (
	headerTenantID = "X-Tenant-ID"
	headerActorID  = "X-Actor-ID"
	headerRequest  = "X-Request-ID"
)

// TenantScope resolves the tenant from the request and threads it through
// the context. Requests without a valid tenant never reach a handler.
func (s *Server) TenantScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerTenantID))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		tenantID, err := snowflake.ParseString(raw)
		if err != nil || tenantID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := tenantcontext.WithTenantID(c.Request.Context(), tenantID)
		if actorID := strings.TrimSpace(c.GetHeader(headerActorID)); actorID != "" {
			ctx = auditcontext.WithActor(ctx, "user", actorID)
		} else {
			ctx = auditcontext.WithActor(ctx, "system", "")
		}
		if requestID := strings.TrimSpace(c.GetHeader(headerRequest)); requestID != "" {
			ctx = auditcontext.WithRequestID(ctx, requestID)
		}
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
