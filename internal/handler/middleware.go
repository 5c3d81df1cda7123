package handler

import (
	"context"
	"net/http"

	"github.com/rmacedo/edgeadmin-go/internal/auth"
	"github.com/rmacedo/edgeadmin-go/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

const principalKey contextKey = "principal"

// requireRole resolves the request credential through the hybrid
// resolver and enforces the given minimum role (empty means any
// authenticated user). The resolved principal lands in the context.
func requireRole(resolver *auth.Resolver, requiredRole string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractToken(r)

			principal, err := resolver.ResolveRole(r.Context(), token, requiredRole)
			if err != nil {
				logger.Debug("auth: request rejected",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser admits any authenticated principal.
func RequireUser(resolver *auth.Resolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return requireRole(resolver, "", logger)
}

// RequireAdmin admits admin and superadmin principals.
func RequireAdmin(resolver *auth.Resolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return requireRole(resolver, domain.RoleAdmin, logger)
}

// RequireSuperAdmin admits only superadmin principals.
func RequireSuperAdmin(resolver *auth.Resolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return requireRole(resolver, domain.RoleSuperAdmin, logger)
}

// PrincipalFromContext extracts the authenticated principal. Only valid
// below one of the Require middlewares.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey).(*domain.Principal)
	return p
}
