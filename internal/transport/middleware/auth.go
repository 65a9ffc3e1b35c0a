package middleware

import (
	"net/http"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/pkg/logger"
)

// UserContext enriches the request logger with the authenticated user.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if p, ok := internal.PrincipalFromContext(ctx); ok {
			ctx = logger.With(ctx, "userID", p.ID, "role", p.Role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
