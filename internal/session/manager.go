// AngelaMos | 2026
// manager.go

package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pierkoo/flasktaskr/internal/config"
	"github.com/pierkoo/flasktaskr/internal/core"
)

type contextKey string

const sessionKey contextKey = "session"

// Manager loads the session at the start of a request and writes it back
// as a cookie right before the response headers go out.
type Manager struct {
	codec       *Codec
	revocations RevocationStore
	cookieName  string
	lifetime    time.Duration
	secure      bool
	logger      *slog.Logger
	now         func() time.Time
}

func NewManager(
	codec *Codec,
	revocations RevocationStore,
	cfg config.SessionConfig,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		codec:       codec,
		revocations: revocations,
		cookieName:  cfg.CookieName,
		lifetime:    cfg.Lifetime,
		secure:      cfg.Secure,
		logger:      logger,
		now:         time.Now,
	}
}

// Load decodes the request's session cookie. Missing, tampered, expired and
// revoked cookies all yield a fresh anonymous session.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return anonymous()
	}

	s, err := m.codec.Decode(cookie.Value)
	if err != nil {
		m.logger.Debug("discarding session cookie", "error", err)
		fresh := anonymous()
		fresh.modified = true
		return fresh
	}

	if !s.Authenticated {
		return s
	}

	revoked, err := m.revocations.IsRevoked(r.Context(), s.ID)
	if err != nil {
		m.logger.Warn("session revocation check failed, treating as logged out",
			"error", err,
		)
		revoked = true
	}

	if revoked {
		m.logger.Debug("discarding session cookie", "error", core.ErrSessionRevoked)
		fresh := anonymous()
		fresh.Flashes = s.Flashes
		fresh.modified = true
		return fresh
	}

	return s
}

// Save writes the session cookie when the session changed.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) {
	if s.revokeID != "" {
		if err := m.revocations.Revoke(ctx, s.revokeID, m.lifetime); err != nil {
			m.logger.Error("failed to revoke session", "error", err)
		}
		s.revokeID = ""
	}

	if !s.modified {
		return
	}
	s.modified = false

	if s.empty() {
		http.SetCookie(w, m.cookie("", -1, time.Unix(0, 0)))
		return
	}

	expiresAt := m.now().Add(m.lifetime)
	value, err := m.codec.Encode(s, expiresAt)
	if err != nil {
		m.logger.Error("failed to encode session", "error", err)
		return
	}

	http.SetCookie(w, m.cookie(value, int(m.lifetime.Seconds()), expiresAt))
}

func (m *Manager) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware attaches the loaded session to the request context and
// persists it once the handler commits its response.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(r)
		ctx := context.WithValue(r.Context(), sessionKey, s)

		sw := &sessionWriter{
			ResponseWriter: w,
			save: func() {
				m.Save(ctx, w, s)
			},
		}

		next.ServeHTTP(sw, r.WithContext(ctx))

		if !sw.wroteHeader {
			sw.save()
		}
	})
}

// FromContext returns the request session. Outside the middleware it
// returns a detached anonymous session so callers never see nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok {
		return s
	}
	return anonymous()
}

// WithSession is used by tests and background callers that build a request
// context by hand.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

type sessionWriter struct {
	http.ResponseWriter
	save        func()
	wroteHeader bool
}

func (w *sessionWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.save()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func newSessionID() string {
	return uuid.NewString()
}
