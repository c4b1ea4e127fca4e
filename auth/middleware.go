// HTTP middleware for the JWT-protected API routes. The cookie surface has
// its own session middleware in the web package; this one only understands
// Authorization: Bearer headers.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/tareas-go/apperror"
	"github.com/user/tareas-go/config"
)

// ContextKey is a dedicated type for context keys to avoid collisions with
// keys set by other packages.
type ContextKey string

// UserIDKey is the context key under which the authenticated user's id is
// stored for downstream handlers.
const UserIDKey ContextKey = "userID"

// JWTMiddleware verifies the bearer token on incoming requests and adds the
// user id to the request context. Requests without a valid access token are
// rejected with 401 before reaching the handler.
func JWTMiddleware(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			tokenString := parts[1]
			claims := &CustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil {
				WriteError(w, r, apperror.NewAuthError(fmt.Sprintf("invalid token: %v", err), err))
				return
			}
			if !token.Valid {
				WriteError(w, r, apperror.NewAuthError("invalid token", nil))
				return
			}
			// Refresh tokens cannot be used to call protected endpoints.
			if claims.TokenType != tokenTypeAccess {
				WriteError(w, r, apperror.NewAuthError("invalid token type", nil))
				return
			}
			if claims.UserID == 0 {
				WriteError(w, r, apperror.NewAuthError("invalid token: user_id claim is missing", nil))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext retrieves the authenticated user id set by the
// middleware. Returns 0 and false when the request was not authenticated.
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}
