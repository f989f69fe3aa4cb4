// Package context carries per-request identity values. Every tenant-scoped
// operation reads the tenant ID from here rather than from transport
// headers directly.
package context

import "context"

type ContextKey string

var (
	RequestIDKey = ContextKey("X-Request-Id")
	TenantIDKey  = ContextKey("X-Tenant-Id")
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	value, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

func GetTenantID(ctx context.Context) string {
	value, ok := ctx.Value(TenantIDKey).(string)
	if !ok {
		return ""
	}
	return value
}
