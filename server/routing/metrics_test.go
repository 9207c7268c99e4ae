package routing

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/aiengine/server/metrics"
)

func TestNewMetricsMux(t *testing.T) {
	m := metrics.NewMetrics()
	server := httptest.NewServer(NewMetricsMux(m))
	defer server.Close()

	m.RequestsTotal.WithLabelValues("/analyze-vitals", "200").Inc()
	m.ErrorsTotal.WithLabelValues("client_error").Inc()
	m.GatewayResults.WithLabelValues("mock").Inc()

	resp, err := http.Get(server.URL + PathMetrics)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	for _, metric := range []string{
		"aiengine_http_requests_total",
		"aiengine_errors_total",
		"aiengine_gateway_results_total",
	} {
		assert.Contains(t, string(body), metric, "response should contain metric '%s'", metric)
	}

	resp, err = http.Get(server.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
