package auth

import (
	"context"
	"net/http"
	"strings"

	"upfafrica-backend/internal/api"
)

type contextKey string

const userIDKey contextKey = "upfafrica_user_id"

// Middleware authenticates bearer tokens and stores the subject user ID on
// the request context.
func (ti *TokenIssuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			api.Unauthorized(w)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			api.Unauthorized(w)
			return
		}

		claims, err := ti.Parse(token)
		if err != nil || claims.Subject == "" {
			api.Unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(userIDKey)
	userID, ok := value.(string)
	return userID, ok
}
