package routing

import (
	"net/http"

	"github.com/teilomillet/aiengine/server/metrics"
)

// PathMetrics is served by the metrics listener only.
const PathMetrics = "/metrics"

// NewMetricsMux returns the handler for the separate metrics listener.
func NewMetricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(PathMetrics, m.Handler())
	return mux
}
