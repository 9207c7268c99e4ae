package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/teilomillet/aiengine/server/metrics"
)

// PrometheusMetrics records request counts, latencies and error classes,
// labelled by chi route pattern.
func PrometheusMetrics(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			active := m.ActiveRequests.WithLabelValues("all")
			active.Inc()
			defer active.Dec()

			rec := record(w)
			next.ServeHTTP(rec, r)

			route := routePattern(r)
			status := rec.code()
			m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

			switch {
			case status >= http.StatusInternalServerError:
				m.ErrorsTotal.WithLabelValues("server_error").Inc()
			case status >= http.StatusBadRequest:
				m.ErrorsTotal.WithLabelValues("client_error").Inc()
			}
		})
	}
}
