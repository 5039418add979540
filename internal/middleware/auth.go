// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/pierkoo/flasktaskr/internal/core"
	"github.com/pierkoo/flasktaskr/internal/session"
)

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
)

const (
	LoginRoute           = "/"
	LoginRequiredMessage = "You need to login first."
	roleAdmin            = "admin"
)

// RequireLogin lets authenticated sessions through with the acting user's id
// and role attached to the context. Anyone else is sent to the login page
// with a notice, and the wrapped handler never runs.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())

		if !s.Authenticated || s.UserID == 0 {
			s.Flash(LoginRequiredMessage)
			http.Redirect(w, r, LoginRoute, http.StatusFound)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, UserIDKey, s.UserID)
		ctx = context.WithValue(ctx, UserRoleKey, s.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleLookup reports an account's current role.
type RoleLookup interface {
	CurrentRole(ctx context.Context, userID int64) (string, error)
}

// RefreshRole re-reads the role of an authenticated session's account on
// every request, so promotions and demotions apply without a new login. A
// session whose account no longer exists is logged out.
func RefreshRole(
	lookup RoleLookup,
	onError func(http.ResponseWriter, *http.Request, error),
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if !s.Authenticated || s.UserID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			role, err := lookup.CurrentRole(r.Context(), s.UserID)
			switch {
			case err == nil:
				s.SetRole(role)
			case errors.Is(err, core.ErrNotFound):
				s.Logout()
			default:
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after RequireLogin. Non-admin actors get the
// forbidden handler.
func RequireAdmin(forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(r.Context()) {
				forbidden.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}

func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRole(ctx) == roleAdmin
}
