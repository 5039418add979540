// AngelaMos | 2026
// handler.go

package task

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pierkoo/flasktaskr/internal/core"
	"github.com/pierkoo/flasktaskr/internal/middleware"
	"github.com/pierkoo/flasktaskr/internal/session"
	"github.com/pierkoo/flasktaskr/internal/web"
)

const (
	MsgCreated      = "New entry was successfully added. Thanks."
	MsgCompleted    = "Task was marked as complete."
	MsgDeleted      = "The task was deleted."
	MsgCompleteDeny = "You can only update tasks that belong to you"
	MsgDeleteDeny   = "You can only delete tasks that belong to you"
	MsgMissing      = "That task does not exist."
)

const tasksRoute = "/tasks/"

type Handler struct {
	service   *Service
	render    *web.Renderer
	validator *validator.Validate
}

func NewHandler(service *Service, render *web.Renderer) *Handler {
	v := web.NewValidator()
	//nolint:errcheck // tag name is static and valid
	_ = v.RegisterValidation("priority", validPriority)

	return &Handler{
		service:   service,
		render:    render,
		validator: v,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/tasks/", h.List)
		r.Post("/add/", h.Create)
		r.Get("/complete/{taskID}/", h.Complete)
		r.Get("/delete/{taskID}/", h.Delete)
	})
}

func actorFrom(r *http.Request) Actor {
	return Actor{
		ID:   middleware.GetUserID(r.Context()),
		Role: middleware.GetUserRole(r.Context()),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.renderBoard(w, r, http.StatusOK, CreateForm{Priority: "1"})
}

func (h *Handler) renderBoard(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form CreateForm,
) {
	board, err := h.service.List(r.Context(), actorFrom(r))
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.render.Render(w, r, status, web.PageTasks, tasksPage{
		Form:       form,
		Board:      board,
		Priorities: priorities(),
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form CreateForm
	if err := web.DecodeForm(r, &form); err != nil {
		h.render.Render(w, r, http.StatusBadRequest, web.PageError, web.ErrorData{
			Status:  http.StatusBadRequest,
			Message: "The submitted form could not be read.",
		})
		return
	}
	form.Normalize()

	if err := h.validator.Struct(form); err != nil {
		fieldErrs, collectErr := web.CollectErrors(err, fieldMessage)
		if collectErr != nil {
			h.render.ServerError(w, r, collectErr)
			return
		}

		fieldErrs.Flash(session.FromContext(r.Context()), createFields)
		h.renderBoard(w, r, http.StatusOK, form)
		return
	}

	in, err := form.Parse()
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	if _, err := h.service.Create(r.Context(), actorFrom(r), in); err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			web.FieldErrors{"name": {web.RequiredMessage}}.
				Flash(session.FromContext(r.Context()), createFields)
			h.renderBoard(w, r, http.StatusOK, form)
			return
		}
		h.render.ServerError(w, r, err)
		return
	}

	session.FromContext(r.Context()).Flash(MsgCreated)
	http.Redirect(w, r, tasksRoute, http.StatusFound)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Complete, MsgCompleted, MsgCompleteDeny)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Delete, MsgDeleted, MsgDeleteDeny)
}

func (h *Handler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, Actor, int64) error,
	success, denied string,
) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil || id <= 0 {
		h.render.NotFound(w, r)
		return
	}

	s := session.FromContext(r.Context())

	err = op(r.Context(), actorFrom(r), id)
	switch {
	case err == nil:
		s.Flash(success)
	case errors.Is(err, ErrNotOwner):
		s.FlashCategory(denied, session.CategoryError)
	case errors.Is(err, core.ErrNotFound):
		s.FlashCategory(MsgMissing, session.CategoryError)
	default:
		h.render.ServerError(w, r, err)
		return
	}

	http.Redirect(w, r, tasksRoute, http.StatusFound)
}
