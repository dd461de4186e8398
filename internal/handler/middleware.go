package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/natthaphonb/taskhub-api/internal/auth"
)

type contextKey struct{}

var userIDKey = contextKey{}

// Authenticator validates the Bearer token on every request it wraps and
// stores the authenticated user id in the request context. It is the sole
// gate in front of the project and task routes.
func Authenticator(jwtAuth auth.JWTAuthenticator, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondMessage(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				respondMessage(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims := &auth.AccessClaims{}
			if _, err := jwtAuth.ValidateTokenWithClaims(parts[1], secret, claims); err != nil {
				respondMessage(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userIDFromContext returns the authenticated user id placed by Authenticator.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
