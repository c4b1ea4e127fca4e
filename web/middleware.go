// Session middleware for the browser surface. Unlike the JWT middleware on
// the API routes, failures here answer with a redirect to /login, because the
// caller is expected to be a browser following the form flow.
package web

import (
	"context"
	"net/http"

	"github.com/user/tareas-go/sessions"
)

// contextKey is a dedicated type for context keys to avoid collisions.
type contextKey string

const userIDKey contextKey = "sessionUserID"

// SessionMiddleware resolves the session cookie against the store and adds
// the bound user id to the request context. Requests without a live session
// are redirected to /login.
func SessionMiddleware(store sessions.Store, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			userID, ok := store.Resolve(cookie.Value)
			if !ok {
				// The token is stale (logged out, expired, or from a
				// previous process). Drop the cookie on the way out.
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    "",
					Path:     "/",
					MaxAge:   -1,
					HttpOnly: true,
				})
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionUserID retrieves the user id set by SessionMiddleware.
func sessionUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}
