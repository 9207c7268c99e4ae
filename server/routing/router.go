// Package routing wires the HTTP middleware stack and the five service routes
// onto a chi router.
package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/teilomillet/aiengine/config"
	"github.com/teilomillet/aiengine/errors"
	"github.com/teilomillet/aiengine/server/handlers"
	"github.com/teilomillet/aiengine/server/metrics"
	"github.com/teilomillet/aiengine/server/middleware"
)

// Route paths.
const (
	PathHealth          = "/"
	PathAnalyzeVitals   = "/analyze-vitals"
	PathGenerateTreat   = "/generate-treatment"
	PathSuggestMedicine = "/suggest-medicines"
	PathSummarizeReport = "/summarize-report"
)

// Router serves the service routes.
type Router struct {
	router chi.Router
}

// NewRouter creates the router. m may be nil, in which case no HTTP metrics
// are recorded.
func NewRouter(cfg *config.Config, h *handlers.Handlers, m *metrics.Metrics, logger *zap.Logger) *Router {
	r := &Router{
		router: chi.NewRouter(),
	}

	// Global middleware stack
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RequestTimer)
	if cfg.CORS.Enabled {
		r.router.Use(middleware.CORS)
	}
	r.router.Use(middleware.Logging(logger))
	if m != nil {
		r.router.Use(middleware.PrometheusMetrics(m))
	}
	// Innermost, so a recovered panic is still logged and counted as a 500.
	r.router.Use(errors.ErrorHandler(logger))

	r.router.Get(PathHealth, h.Health)
	r.router.Post(PathAnalyzeVitals, h.AnalyzeVitals)
	r.router.Post(PathGenerateTreat, h.GenerateTreatment)
	r.router.Post(PathSuggestMedicine, h.SuggestMedicines)
	r.router.Post(PathSummarizeReport, h.SummarizeReport)

	r.router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errors.WriteError(w, errors.NewNotFoundError(middleware.GetRequestID(req.Context()), req.URL.Path))
	})
	r.router.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		errors.WriteError(w, errors.NewMethodNotAllowedError(middleware.GetRequestID(req.Context()), req.Method))
	})

	return r
}

// ServeHTTP implements the http.Handler interface.
// Delegates request handling to the underlying Chi router.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Routes lists the registered method and pattern pairs.
func (r *Router) Routes() []string {
	var routes []string
	_ = chi.Walk(r.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	return routes
}
