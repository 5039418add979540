// AngelaMos | 2026
// web_test.go

package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierkoo/flasktaskr/internal/session"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := NewRenderer("Taskr", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return rn
}

func TestRenderDrainsFlashes(t *testing.T) {
	rn := newTestRenderer(t)
	s := &session.Session{}
	s.Flash("Goodbye!")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(session.WithSession(req.Context(), s))
	rec := httptest.NewRecorder()

	rn.Render(rec, req, http.StatusOK, PageLogin, struct {
		Form  struct{ Name string }
		Error string
	}{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Goodbye!")
	assert.Contains(t, rec.Body.String(), "Please login to access your task list.")
	assert.Empty(t, s.Flashes)
}

func TestServerErrorHidesDetails(t *testing.T) {
	rn := newTestRenderer(t)
	rec := httptest.NewRecorder()

	rn.ServerError(rec, httptest.NewRequest(http.MethodGet, "/", nil),
		errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong.")
	assert.NotContains(t, rec.Body.String(), "password authentication")
}

func TestErrorPages(t *testing.T) {
	rn := newTestRenderer(t)

	tests := []struct {
		name   string
		render func(http.ResponseWriter, *http.Request)
		status int
	}{
		{name: "not found", render: rn.NotFound, status: http.StatusNotFound},
		{name: "forbidden", render: rn.Forbidden, status: http.StatusForbidden},
		{name: "too many", render: rn.TooManyRequests, status: http.StatusTooManyRequests},
		{name: "method", render: rn.MethodNotAllowed, status: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.render(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

type signup struct {
	Name    string `form:"name"    validate:"required,max=5"`
	Email   string `form:"email"   validate:"required,email"`
	Pass    string `form:"pass"    validate:"required"`
	Confirm string `form:"confirm" validate:"eqfield=Pass"`
}

func TestDecodeAndCollectErrors(t *testing.T) {
	form := url.Values{
		"name":    {"toolongname"},
		"email":   {""},
		"pass":    {"a"},
		"confirm": {"b"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var dst signup
	require.NoError(t, DecodeForm(req, &dst))
	assert.Equal(t, "toolongname", dst.Name)

	errs, err := CollectErrors(NewValidator().Struct(dst), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Field cannot be longer than 5 characters."}, errs["name"])
	assert.Equal(t, []string{"This field is required."}, errs["email"])
	assert.Equal(t, []string{"Passwords must match."}, errs["confirm"])

	lines := errs.Messages([]Field{
		{Name: "name", Label: "Username"},
		{Name: "confirm", Label: "Repeat Password"},
	})
	assert.Equal(t, []string{
		"Error in the Username field - Field cannot be longer than 5 characters.",
		"Error in the Repeat Password field - Passwords must match.",
	}, lines)
}

func TestCollectErrorsPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := CollectErrors(boom, nil)
	assert.ErrorIs(t, err, boom)
}
