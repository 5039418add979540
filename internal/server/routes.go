// AngelaMos | 2026
// routes.go

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pierkoo/flasktaskr/internal/admin"
	"github.com/pierkoo/flasktaskr/internal/auth"
	"github.com/pierkoo/flasktaskr/internal/health"
	"github.com/pierkoo/flasktaskr/internal/metrics"
	"github.com/pierkoo/flasktaskr/internal/middleware"
	"github.com/pierkoo/flasktaskr/internal/session"
	"github.com/pierkoo/flasktaskr/internal/task"
	"github.com/pierkoo/flasktaskr/internal/web"
)

type Routes struct {
	Sessions *session.Manager
	Roles    middleware.RoleLookup
	Renderer *web.Renderer
	Limiter  *middleware.RateLimiter
	Health   *health.Handler
	Auth     *auth.Handler
	Tasks    *task.Handler
	Admin    *admin.Handler
}

// Mount installs the middleware stack and every route. Probes and metrics
// sit outside the session so they never touch cookies.
func (s *Server) Mount(rt Routes) {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recoverer(s.logger, rt.Renderer.ServerError))
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)

	if rt.Health != nil {
		rt.Health.RegisterRoutes(r)
	}
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rt.Sessions.Middleware)
		if rt.Roles != nil {
			r.Use(middleware.RefreshRole(rt.Roles, rt.Renderer.ServerError))
		}

		limiter := passthrough
		if rt.Limiter != nil {
			limiter = rt.Limiter.Handler
		}

		rt.Auth.RegisterRoutes(r, middleware.RequireLogin, limiter)
		rt.Tasks.RegisterRoutes(r, middleware.RequireLogin)

		if rt.Admin != nil {
			adminOnly := middleware.RequireAdmin(http.HandlerFunc(rt.Renderer.Forbidden))
			rt.Admin.RegisterRoutes(r, middleware.RequireLogin, adminOnly)
		}
	})
}

func passthrough(next http.Handler) http.Handler {
	return next
}
