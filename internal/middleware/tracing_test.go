// AngelaMos | 2026
// tracing_test.go

package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	return recorder
}

func TestTracingNamesSpanByRoute(t *testing.T) {
	recorder := recordSpans(t)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	r := chi.NewRouter()
	r.Use(Tracing)
	r.Use(Logger(logger))
	r.Get("/complete/{taskID}/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	r.Get("/boom/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/complete/7/", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom/", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "GET /complete/{taskID}/", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("http.route", "/complete/{taskID}/"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.response.status_code", http.StatusFound))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)

	assert.Contains(t, logs.String(), `"trace_id":"`+spans[0].SpanContext().TraceID().String()+`"`)
}

func TestTracingContinuesPropagatedTrace(t *testing.T) {
	recorder := recordSpans(t)

	r := chi.NewRouter()
	r.Use(Tracing)
	r.Get("/tasks/", func(w http.ResponseWriter, _ *http.Request) {})

	prevPropagator := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prevPropagator) })

	req := httptest.NewRequest(http.MethodGet, "/tasks/", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
}

func TestRoutePatternMatchesRegisteredRoute(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		target  string
		want    string
	}{
		{name: "trailing slash param", pattern: "/complete/{taskID}/", target: "/complete/3/", want: "/complete/{taskID}/"},
		{name: "trailing slash static", pattern: "/tasks/", target: "/tasks/", want: "/tasks/"},
		{name: "no trailing slash", pattern: "/healthz", target: "/healthz", want: "/healthz"},
		{name: "root", pattern: "/", target: "/", want: "/"},
		{name: "unmatched", pattern: "/tasks/", target: "/nope/", want: "unmatched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			r := chi.NewRouter()
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req)
					got = routePattern(req)
				})
			})
			r.Get(tt.pattern, func(http.ResponseWriter, *http.Request) {})

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.want, got)
		})
	}
}
