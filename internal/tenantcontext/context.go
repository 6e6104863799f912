package tenantcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type contextKey string

const tenantIDKey contextKey = "tenant_id"

// WithTenantID scopes the context to one tenant. Every repository query
// downstream must resolve its tenant through this.
func WithTenantID(ctx context.Context, tenantID snowflake.ID) context.Context {
	if tenantID == 0 {
		return ctx
	}
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

func TenantIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	value, ok := ctx.Value(tenantIDKey).(snowflake.ID)
	if !ok || value == 0 {
		return 0, false
	}
	return value, true
}
