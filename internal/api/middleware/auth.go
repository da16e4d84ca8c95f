package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/animaweaver/chatstore/internal/api/response"
)

type contextKey string

const TokenKey contextKey = "bearerToken"

// Authenticate requires a bearer token header. The token itself is not
// verified here, only captured; credentials belong to the upstream
// identity provider this service fronts.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		ctx := context.WithValue(r.Context(), TokenKey, parts[1])
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetToken gets the bearer token from context
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
