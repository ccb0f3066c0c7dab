package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/orientis/orientis/internal/auth"
	"github.com/orientis/orientis/internal/middleware"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the validated access token claims, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*auth.Claims)
	return claims, ok
}

// RequireAuth validates the Bearer access token and stores its claims in the
// request context. Requests without a valid access token get 401.
func RequireAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Missing bearer token")
				return
			}

			claims, err := jwtService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid or expired token")
				return
			}
			if claims.Type != auth.TokenTypeAccess {
				WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Access token required")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			ctx = middleware.SetUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin wraps RequireAuth semantics with an admin role check. It must
// run after RequireAuth in the chain.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
			return
		}
		if !claims.IsAdmin() {
			WriteError(w, r.Context(), http.StatusForbidden, ErrCodeForbidden, "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
