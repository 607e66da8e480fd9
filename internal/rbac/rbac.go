// Package rbac answers one question for the HTTP layer: may this role
// perform this action? Roles arrive in the request context, put there
// by the JWT middleware.
package rbac

import (
	"context"
	"net/http"
	"strings"
)

// Allowed reports whether role carries perm. A grant ending in "*"
// covers every permission under its prefix; a bare "*" covers all.
func Allowed(role, perm string) bool {
	for _, grant := range RolePermissions[role] {
		if grant == "*" || grant == perm {
			return true
		}
		if prefix, ok := strings.CutSuffix(grant, "*"); ok && strings.HasPrefix(perm, prefix) {
			return true
		}
	}
	return false
}

// Require rejects the request unless the context role carries perm.
// A request with no role at all is forbidden, not unauthorized; the
// JWT middleware already turned away missing or bad tokens.
func Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Allowed(RoleFromContext(r.Context()), perm) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ---- role in context ----

type ctxKey struct{}

var ctxKeyRole = ctxKey{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

func RoleFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyRole); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
