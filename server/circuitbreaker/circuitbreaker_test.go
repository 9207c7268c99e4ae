package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errUpstream = errors.New("upstream down")

func TestCircuitBreaker(t *testing.T) {
	registry := prometheus.NewRegistry()
	cb := NewCircuitBreaker("test", Config{
		FailureThreshold: 2,
		Timeout:          50 * time.Millisecond,
		MaxRequests:      1,
	}, zaptest.NewLogger(t), registry)

	assert.Equal(t, "test", cb.Name())
	assert.Equal(t, StateClosed, cb.GetState())

	// Below the threshold the breaker stays closed.
	assert.ErrorIs(t, cb.Execute(func() error { return errUpstream }), errUpstream)
	assert.Equal(t, StateClosed, cb.GetState())

	// Reaching it trips the breaker.
	assert.ErrorIs(t, cb.Execute(func() error { return errUpstream }), errUpstream)
	assert.Equal(t, StateOpen, cb.GetState())
	assert.Equal(t, float64(1), testutil.ToFloat64(cb.tripsTotal))
	assert.Equal(t, float64(StateOpen), testutil.ToFloat64(cb.stateGauge))
	assert.Equal(t, float64(2), testutil.ToFloat64(cb.failuresCount))

	// While open, calls are rejected without running.
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	// After the timeout a successful trial call closes it again.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.GetState())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, float64(StateClosed), testutil.ToFloat64(cb.stateGauge))
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("reset", Config{
		FailureThreshold: 2,
		Timeout:          time.Minute,
	}, nil, nil)

	_ = cb.Execute(func() error { return errUpstream })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return errUpstream })

	assert.Equal(t, StateClosed, cb.GetState())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
