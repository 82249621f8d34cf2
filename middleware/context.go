package middleware

import "context"

// Context key type to avoid collisions
type contextKey string

const (
	// requestIDKey is the context key for the request ID
	requestIDKey contextKey = "request_id"

	// principalKey is the context key for the authenticated principal
	principalKey contextKey = "principal"

	// tenantKey is the context key for the tenant scope (empresa id)
	tenantKey contextKey = "tenant"
)

// Principal is the authenticated identity for one request. It is constructed
// once by the auth middleware from verified claims and is immutable for the
// request's lifetime.
type Principal struct {
	UserID    int64
	CompanyID int64
	RoleID    int64
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithPrincipal adds a principal to the context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipalFromContext retrieves the principal from context.
// The second return value is false when no principal was attached.
func GetPrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// WithTenant adds the tenant scope (empresa id) to the context
func WithTenant(ctx context.Context, empresaID int64) context.Context {
	return context.WithValue(ctx, tenantKey, empresaID)
}

// GetTenantFromContext retrieves the tenant scope from context.
// Returns zero when no tenant scope was attached.
func GetTenantFromContext(ctx context.Context) int64 {
	if empresaID, ok := ctx.Value(tenantKey).(int64); ok {
		return empresaID
	}
	return 0
}
