// AngelaMos | 2026
// render.go

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pierkoo/flasktaskr/internal/middleware"
	"github.com/pierkoo/flasktaskr/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageLogin    = "login"
	PageRegister = "register"
	PageTasks    = "tasks"
	PageError    = "error"
)

// DateLayout is the calendar date format used by forms and listings.
const DateLayout = "01/02/2006"

// View is the value every page template executes against.
type View struct {
	AppName string
	Title   string
	Session *session.Session
	Flashes []session.Flash
	Data    any
}

type ErrorData struct {
	Status  int
	Message string
}

type Renderer struct {
	pages   map[string]*template.Template
	appName string
	logger  *slog.Logger
}

func NewRenderer(appName string, logger *slog.Logger) (*Renderer, error) {
	return newRenderer(templateFS, appName, logger)
}

func newRenderer(
	fsys fs.FS,
	appName string,
	logger *slog.Logger,
) (*Renderer, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(DateLayout)
		},
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{PageLogin, PageRegister, PageTasks, PageError} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(
			fsys,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, appName: appName, logger: logger}, nil
}

// Render executes page into a buffer before anything is written, so the
// flashes it drains are persisted with the same response.
func (rn *Renderer) Render(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page string,
	data any,
) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.ServerError(w, r, fmt.Errorf("unknown page %q", page))
		return
	}

	s := session.FromContext(r.Context())
	view := View{
		AppName: rn.appName,
		Title:   strings.ToUpper(page[:1]) + page[1:],
		Session: s,
		Flashes: s.PopFlashes(),
		Data:    data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", view); err != nil {
		rn.logger.Error("template render failed",
			"page", page,
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writePlainError(w, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // client went away
	_, _ = buf.WriteTo(w)
}

func (rn *Renderer) renderError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
) {
	rn.Render(w, r, status, PageError, ErrorData{Status: status, Message: message})
}

func (rn *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rn.renderError(w, r, http.StatusNotFound,
		"Sorry. There's nothing here.")
}

func (rn *Renderer) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	rn.renderError(w, r, http.StatusMethodNotAllowed,
		"That method is not allowed here.")
}

func (rn *Renderer) Forbidden(w http.ResponseWriter, r *http.Request) {
	rn.renderError(w, r, http.StatusForbidden,
		"You do not have permission to view this page.")
}

func (rn *Renderer) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	rn.renderError(w, r, http.StatusTooManyRequests,
		"Too many attempts. Please wait a moment and try again.")
}

// ServerError logs err with the request id and shows the generic 500 page.
// Internal details never reach the client.
func (rn *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	rn.logger.Error("request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	rn.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
}

func writePlainError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}
