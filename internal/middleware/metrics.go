package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"NetIntelAPI/internal/metrics"

	"github.com/gorilla/mux"
)

const unmatchedRoute = "unmatched"

type routeKey struct{}

// Metrics records request counts and latency. It wraps the router, so 404 and
// 405 responses are counted too; RouteLabel fills in the route template for
// matched requests so /api/alerts/7 and /api/alerts/8 share one series.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrap(w)
			route := unmatchedRoute

			next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), routeKey{}, &route)))

			m.ObserveRequest(r.Method, route, strconv.Itoa(rw.statusCode), time.Since(start).Seconds())
		})
	}
}

// RouteLabel must run inside the router (router.Use), where mux has resolved the route.
func RouteLabel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if label, ok := r.Context().Value(routeKey{}).(*string); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					*label = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
