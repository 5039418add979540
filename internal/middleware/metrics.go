// AngelaMos | 2026
// metrics.go

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pierkoo/flasktaskr/internal/metrics"
)

// Metrics records request counts and latency labelled by the matched chi
// route pattern, so /complete/1/ and /complete/2/ share one series.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.InFlightRequests.Inc()
		defer metrics.InFlightRequests.Dec()

		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := routePattern(r)

		metrics.RequestsTotal.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Inc()
		metrics.RequestDuration.
			WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	})
}

// routePattern is only complete after the router has served the request.
// chi trims the trailing slash from patterns; it is put back when the
// request had one so labels read like the registered "/complete/{taskID}/".
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}

	pattern := rctx.RoutePattern()
	if pattern == "" {
		return "unmatched"
	}
	if pattern != "/" && strings.HasSuffix(r.URL.Path, "/") && !strings.HasSuffix(pattern, "/") {
		pattern += "/"
	}
	return pattern
}
