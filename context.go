package tenantgate

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/tenantgate/pkg/logger"
)

type tenantContextKey struct{}

// WithTenant returns a context carrying the resolved tenant.
func WithTenant(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tc)
}

// TenantFromContext returns the tenant resolved for this request, if any.
func TenantFromContext(ctx context.Context) (*TenantContext, bool) {
	tc, ok := ctx.Value(tenantContextKey{}).(*TenantContext)
	return tc, ok && tc != nil
}

// LogExtractor adds tenant_id to log records carrying a resolved tenant.
func LogExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if tc, ok := TenantFromContext(ctx); ok {
			return slog.String("tenant_id", tc.ID.String()), true
		}
		return slog.Attr{}, false
	}
}
