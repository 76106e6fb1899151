package middleware

import (
	"net/http"

	"parking-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Headers set by the upstream auth gateway. Authentication itself happens
// there; this service only consumes the verified identity.
const (
	HeaderActorID = "X-User-ID"
	HeaderRole    = "X-User-Role"
)

// Identity requires an authenticated actor on the request and places it in
// the context for handlers.
func Identity(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID, err := uuid.Parse(r.Header.Get(HeaderActorID))
			if err != nil {
				log.Warn("Request without valid identity",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr),
				)
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			role := r.Header.Get(HeaderRole)
			if role != utils.RoleUser && role != utils.RoleCompany {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			ctx := utils.SetActorContext(r.Context(), actorID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group to one role. Must run after Identity.
func RequireRole(role string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorRole, ok := utils.GetRoleFromContext(r.Context())
			if !ok || actorRole != role {
				log.Warn("Role check failed",
					zap.String("path", r.URL.Path),
					zap.String("required", role),
					zap.String("actual", actorRole),
				)
				utils.ResponseForbidden(w, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
