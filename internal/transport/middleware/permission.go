package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/task-management/internal"
)

// RequireRoles rejects callers whose role is not in roles. It must run after
// the auth middleware has attached a principal.
func RequireRoles(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !p.HasRole(roles...) {
				logger.WarnContext(r.Context(), "access denied: role not allowed",
					"user_id", p.ID,
					"role", p.Role,
					"required_roles", roles)
				writeJSONError(w, http.StatusForbidden, "forbidden: insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IsManager reports whether the principal may act on other users' records.
func IsManager(p *internal.Principal) bool {
	return p.HasRole(internal.RoleAdmin, internal.RoleManager)
}
