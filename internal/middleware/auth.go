package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"mayday/coordinator/internal/auth"
	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
)

// TokenParser turns a bearer token into claims.
type TokenParser interface {
	Parse(token string) (*auth.JWTClaims, error)
}

var errMissingToken = errors.New("missing bearer token")

// AuthMiddleware requires a valid bearer token and stores its claims in the context.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			raw, ok := bearerToken(r)
			if !ok {
				// EventSource cannot set headers, so the stream accepts ?access_token=.
				raw = r.URL.Query().Get("access_token")
			}
			if raw == "" {
				common.RespondError(w, start, errMissingToken, constants.MsgUnauthorized, http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				common.RespondError(w, start, auth.ErrInvalidToken, constants.MsgUnauthorized, http.StatusUnauthorized)
				return
			}

			if rep, ok := w.(userReporter); ok {
				rep.setUser(claims.Subject())
			}
			next.ServeHTTP(w, r.WithContext(auth.SetUserClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
