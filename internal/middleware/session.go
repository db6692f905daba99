package middleware

import (
	"context"
	"net/http"

	"github.com/lucahenggart/sportbox-backend/internal/services"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "sportbox_session"

type contextKey string

const (
	sessionKey contextKey = "session"
	tokenKey   contextKey = "session_token"
)

// SessionLoader resolves the session cookie to a Session and stores it on
// the request context. Requests without a valid cookie proceed as
// anonymous; nothing here rejects a request.
func SessionLoader(sessions *services.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if sess, ok := sessions.Get(c.Value); ok {
					ctx = context.WithValue(ctx, sessionKey, sess)
					ctx = context.WithValue(ctx, tokenKey, c.Value)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the request's session, anonymous if none.
func SessionFromContext(ctx context.Context) services.Session {
	if sess, ok := ctx.Value(sessionKey).(services.Session); ok {
		return sess
	}
	return services.Session{}
}

// TokenFromContext returns the request's session token, empty if none.
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}

// RequireApproved rejects requests whose session may not view the box
// code: 401 for anonymous clients, 403 for unapproved accounts.
func RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		if sess.State() == services.StateAnonymous {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		if !sess.CanViewCode() {
			http.Error(w, "Account not yet approved", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests from anyone but an admin session.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		if sess.State() == services.StateAnonymous {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		if !sess.IsAdmin {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
