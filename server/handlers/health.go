package handlers

import "net/http"

// HealthStatus is the fixed status string of the health check.
const HealthStatus = "AI Engine Running"

// HealthResponse is the body of GET /.
type HealthResponse struct {
	Status string `json:"status"`
	Port   int    `json:"port"`
}

// Health reports that the service is up. It has no side effects.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: HealthStatus, Port: h.port})
}
