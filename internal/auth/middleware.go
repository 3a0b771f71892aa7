// internal/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"stayfront/internal/model"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalDirectory resolves an authenticated email to its role.
type PrincipalDirectory interface {
	FindPrincipalRole(ctx context.Context, email string) (*model.Principal, error)
}

// PrincipalMiddleware authenticates the bearer token and resolves the
// email to a principal via the directory. Unknown emails are treated as
// unauthenticated even when the token itself verifies.
func PrincipalMiddleware(dir PrincipalDirectory) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authz, "Bearer ")
			claims, err := ValidateToken(tokenStr)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := dir.FindPrincipalRole(r.Context(), claims.Email)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if principal == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from context
func GetPrincipal(r *http.Request) *model.Principal {
	if val := r.Context().Value(principalKey); val != nil {
		return val.(*model.Principal)
	}
	return nil
}
