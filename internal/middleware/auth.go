package middleware

import (
	"context"
	"net/http"

	"github.com/ayush/vision-assist/internal/auth"
)

type contextKey string

// IdentityKey is the request-context key holding the validated *models.Identity.
const IdentityKey contextKey = "identity"

// RequireAPIKey validates the Authorization header against issued API keys
// and injects the resolved identity into the request context.
func RequireAPIKey(v auth.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Authorization")
			if key == "" {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			id, err := v.ValidateAPIKey(r.Context(), key)
			if err != nil {
				http.Error(w, `{"error":"invalid API key"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
