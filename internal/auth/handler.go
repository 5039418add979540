// AngelaMos | 2026
// handler.go

package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pierkoo/flasktaskr/internal/metrics"
	"github.com/pierkoo/flasktaskr/internal/session"
	"github.com/pierkoo/flasktaskr/internal/web"
)

const (
	MsgBothRequired       = "Both fields are required."
	MsgInvalidCredentials = "Invalid username or password."
	MsgWelcome            = "Welcome!"
	MsgGoodbye            = "Goodbye!"
	MsgRegistered         = "Thanks for registering. Please login."
	MsgUserExists         = "That username and/or email already exists."
)

const (
	loginRoute = "/"
	tasksRoute = "/tasks/"
)

type Handler struct {
	service   *Service
	render    *web.Renderer
	validator *validator.Validate
}

func NewHandler(service *Service, render *web.Renderer) *Handler {
	return &Handler{
		service:   service,
		render:    render,
		validator: web.NewValidator(),
	}
}

// RegisterRoutes mounts login, registration and logout. limiter guards the
// credential posts; authenticator guards logout.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
) {
	r.Get("/", h.LoginPage)
	r.With(limiter).Post("/", h.Login)
	r.Get("/register/", h.RegisterPage)
	r.With(limiter).Post("/register/", h.Register)
	r.With(authenticator).Get("/logout/", h.Logout)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, web.PageLogin, loginPage{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	if err := web.DecodeForm(r, &form); err != nil {
		h.render.Render(w, r, http.StatusBadRequest, web.PageLogin,
			loginPage{Error: MsgBothRequired})
		return
	}
	form.Normalize()

	if err := h.validator.Struct(form); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeInvalid).Inc()
		h.render.Render(w, r, http.StatusOK, web.PageLogin,
			loginPage{Form: LoginForm{Name: form.Name}, Error: MsgBothRequired})
		return
	}

	user, err := h.service.Login(r.Context(), form.Name, form.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeDenied).Inc()
			h.render.Render(w, r, http.StatusOK, web.PageLogin,
				loginPage{Form: LoginForm{Name: form.Name}, Error: MsgInvalidCredentials})
			return
		}
		metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeError).Inc()
		h.render.ServerError(w, r, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeSuccess).Inc()

	s := session.FromContext(r.Context())
	s.Login(user.ID, user.Role)
	s.Flash(MsgWelcome)
	http.Redirect(w, r, tasksRoute, http.StatusFound)
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, web.PageRegister, registerPage{})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form RegisterForm
	if err := web.DecodeForm(r, &form); err != nil {
		h.render.Render(w, r, http.StatusBadRequest, web.PageRegister, registerPage{})
		return
	}
	form.Normalize()

	// passwords are never echoed back into the form
	page := registerPage{Form: RegisterForm{Name: form.Name, Email: form.Email}}

	if err := h.validator.Struct(form); err != nil {
		fieldErrs, collectErr := web.CollectErrors(err, nil)
		if collectErr != nil {
			h.render.ServerError(w, r, collectErr)
			return
		}
		metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeInvalid).Inc()

		fieldErrs.Flash(session.FromContext(r.Context()), registerFields)

		h.render.Render(w, r, http.StatusOK, web.PageRegister, page)
		return
	}

	if _, err := h.service.Register(r.Context(), form.Name, form.Email, form.Password); err != nil {
		if errors.Is(err, ErrUserExists) {
			metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeConflict).Inc()
			page.Error = MsgUserExists
			h.render.Render(w, r, http.StatusOK, web.PageRegister, page)
			return
		}
		metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeError).Inc()
		h.render.ServerError(w, r, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeSuccess).Inc()
	session.FromContext(r.Context()).Flash(MsgRegistered)
	http.Redirect(w, r, loginRoute, http.StatusFound)
}

// Logout only runs behind the login gate, so an anonymous visitor is
// redirected before any farewell is queued.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	s.Logout()
	s.Flash(MsgGoodbye)
	http.Redirect(w, r, loginRoute, http.StatusFound)
}
