package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/teilomillet/aiengine/config"
	"github.com/teilomillet/aiengine/server/gateway"
	"github.com/teilomillet/aiengine/server/handlers"
	"github.com/teilomillet/aiengine/server/mocks"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.LLM.APIKey = ""
	return cfg
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

// runServer serves s in the background and returns a function that stops it
// and reports the result of Serve.
func runServer(t *testing.T, s *Server, ln, metricsLn net.Listener) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln, metricsLn) }()

	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(10 * time.Second):
			t.Fatal("server did not shut down")
			return nil
		}
	}
}

func TestServerServesRoutes(t *testing.T) {
	s, err := NewServer(testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	ln := listen(t)
	stop := runServer(t, s, ln, nil)
	base := "http://" + ln.Addr().String()

	resp, err := http.Get(base + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"AI Engine Running","port":5001}`, string(body))

	resp, err = http.Post(base+"/generate-treatment", "application/json",
		strings.NewReader(`{"diagnosis":"Migraine","symptoms":"headache","age":40}`))
	require.NoError(t, err)
	var got handlers.SuggestionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(got.Suggestion, gateway.MockMarker))

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.NoError(t, stop())
}

func TestServerMetricsListener(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true

	completer := mocks.NewMockCompleter(nil)
	s, err := NewServer(cfg, zaptest.NewLogger(t), WithCompleter(completer))
	require.NoError(t, err)

	ln, metricsLn := listen(t), listen(t)
	stop := runServer(t, s, ln, metricsLn)

	resp, err := http.Post("http://"+ln.Addr().String()+"/suggest-medicines", "application/json",
		strings.NewReader(`{"symptoms":"sore throat","age":12}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, completer.Calls())

	resp, err = http.Get("http://" + metricsLn.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `aiengine_http_requests_total{endpoint="/suggest-medicines",status="200"} 1`)

	assert.NoError(t, stop())
}

func TestServerAppliesLogLevelChanges(t *testing.T) {
	cfg := testConfig()
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	watcher := mocks.NewMockConfigWatcher(cfg)

	s, err := NewServer(cfg, zap.NewNop(), WithWatcher(watcher), WithAtomicLevel(level))
	require.NoError(t, err)
	stop := runServer(t, s, listen(t), nil)

	updated := testConfig()
	updated.Logging.Level = "debug"
	watcher.UpdateConfig(updated)

	assert.Eventually(t, func() bool {
		return level.Level() == zapcore.DebugLevel
	}, 2*time.Second, 10*time.Millisecond)

	assert.NoError(t, stop())
}

func TestServerWithCircuitBreakerAndCustomExtractor(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.CircuitBreaker.Enabled = true

	s, err := NewServer(cfg, zaptest.NewLogger(t), WithExtractor(&mocks.MockExtractor{Text: "report"}))
	require.NoError(t, err)
	assert.NotNil(t, s.Handler())
	assert.NotNil(t, s.Metrics())
}

func TestServerStartFailsWhenPortTaken(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	cfg := testConfig()
	cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port

	s, err := NewServer(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}
