package middleware

import (
	"net/http"
	"strings"

	"github.com/plenario/gestion-api/auth"
	"github.com/plenario/gestion-api/utils"
	"go.uber.org/zap"
)

// TokenVerifier defines the interface for verifying access tokens
type TokenVerifier interface {
	// Verify validates a token string and returns its claims
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware provides authentication and tenant-scoping middleware
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth is a middleware that requires a valid bearer token.
// On success it attaches an immutable Principal to the request context.
// It performs no I/O beyond in-memory verification.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing or malformed authorization header",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, utils.CodeMissingCredential, "missing or malformed authorization header")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warn("token verification failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, utils.CodeInvalidCredential, "invalid or expired token")
			return
		}

		principal := Principal{
			UserID:    claims.UserID,
			CompanyID: claims.CompanyID,
			RoleID:    claims.RoleID,
		}
		ctx = WithPrincipal(ctx, principal)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.Int64("user_id", principal.UserID),
			zap.Int64("company_id", principal.CompanyID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireTenant is a middleware that attaches the tenant scope from the
// principal's company id. It must run after RequireAuth.
//
// A principal without a company id is rejected with 403: an authenticated
// user with no associated empresa is unauthorized for every tenant-scoped
// operation. There is no fallback to a default tenant.
func (m *AuthMiddleware) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		principal, ok := GetPrincipalFromContext(ctx)
		if !ok {
			m.logger.Error("principal not found in context",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, utils.CodeMissingCredential, "authentication required")
			return
		}

		if principal.CompanyID == 0 {
			m.logger.Warn("authenticated user has no company",
				zap.String("request_id", requestID),
				zap.Int64("user_id", principal.UserID))
			_ = utils.WriteForbidden(w, utils.CodeTenantNotDefined, "no company associated with the authenticated user")
			return
		}

		ctx = WithTenant(ctx, principal.CompanyID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the token from the Authorization header.
// Returns "" when the header is absent or the scheme is not Bearer.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
