package middleware

import (
	"errors"
	"net/http"
	"time"

	"mayday/coordinator/internal/auth"
	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
)

var errRoleRequired = errors.New("insufficient role for this action")

// RequireRole lets the request through only when the caller holds one of roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...constants.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				common.RespondError(w, time.Now(), nil, constants.MsgMissingClaims, http.StatusUnauthorized)
				return
			}
			if !claims.HasRole(roles...) {
				common.RespondError(w, time.Now(), errRoleRequired, constants.MsgForbidden, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
