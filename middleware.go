package uauth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userContextKey contextKey = "uauth.user"

// UserFromContext returns the authenticated user placed in the request
// context by Middleware.RequireUser, or nil.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey).(*User)
	return user
}

// Middleware authenticates requests carrying a bearer access token.
type Middleware struct {
	Issuer *Issuer
	Store  Store
}

// RequireUser verifies the Authorization header, loads the subject user and
// passes it downstream via the request context. Failures are 401s whose
// message names the stage that failed (header missing, malformed scheme,
// invalid token, user gone) without ever detailing why a token is invalid.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Authorization header missing")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Invalid authorization header format")
			return
		}

		userID, err := m.Issuer.VerifyAccessToken(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token")
			return
		}

		user, err := m.Store.GetUserByID(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
