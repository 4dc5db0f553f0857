// Package web provides the HTTP plumbing shared by all route packages:
// the session gate middleware, response helpers, and the login throttle.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/user/reviewboard-go/apperror"
	"github.com/user/reviewboard-go/session"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const userIDKey contextKey = "userID"

// ContextWithUserID injects the authenticated user's id into ctx. Used by
// the gate middleware and by tests.
func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's id from ctx. The
// second return value is false for requests that did not pass a gate.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

// lookup resolves the caller's session, if any. A missing or expired
// session returns nil without error; only infrastructure failures error.
func lookup(store session.Store, r *http.Request) (*session.Session, error) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return store.Find(r.Context(), cookie.Value)
}

// RequirePage gates page routes. Unauthenticated callers are redirected to
// the home page; authenticated ones proceed with their user id in the
// request context.
func RequirePage(store session.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := lookup(store, r)
			if err != nil {
				slog.Error("session lookup failed", slog.String("error", err.Error()))
				WriteError(w, r, err)
				return
			}
			if sess == nil {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), sess.UserID)))
		})
	}
}

// RequireAPI gates API routes. Unauthenticated callers receive a 401 JSON
// error instead of a redirect.
func RequireAPI(store session.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := lookup(store, r)
			if err != nil {
				slog.Error("session lookup failed", slog.String("error", err.Error()))
				WriteError(w, r, err)
				return
			}
			if sess == nil {
				WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), sess.UserID)))
		})
	}
}

// RedirectIfAuthenticated sends callers who already have a session to the
// feed. Applied to the home, login, and signup pages. A failed lookup is
// treated as unauthenticated: these pages must stay reachable.
func RedirectIfAuthenticated(store session.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := lookup(store, r)
			if err != nil {
				slog.Warn("session lookup failed on public page", slog.String("error", err.Error()))
			}
			if sess != nil {
				http.Redirect(w, r, "/feed", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
