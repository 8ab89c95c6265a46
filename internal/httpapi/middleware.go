package httpapi

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator checks a bearer token and returns the authenticated user id.
type TokenValidator interface {
	ValidateToken(token string) (int64, error)
}

// requireAuth wraps a handler and rejects requests without a valid
// "Authorization: Bearer <token>" header.
func requireAuth(validator TokenValidator, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			failure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := validator.ValidateToken(parts[1])
		if err != nil {
			failure(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

// userIDFrom returns the authenticated user id placed by requireAuth.
func userIDFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}
