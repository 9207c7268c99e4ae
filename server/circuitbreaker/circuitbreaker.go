// Package circuitbreaker guards model calls with sony/gobreaker and exports
// the breaker state to Prometheus.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned instead of calling the provider while the
// breaker is open or its half-open trial quota is used up.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the current state of the circuit breaker
type State int

const (
	StateClosed   State = iota // Circuit is closed (allowing requests)
	StateHalfOpen              // Circuit is half-open (testing if the provider recovered)
	StateOpen                  // Circuit is open (blocking requests)
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config holds configuration for the circuit breaker
type Config struct {
	FailureThreshold uint32        // Consecutive failures before opening the circuit
	Timeout          time.Duration // Time spent open before going half-open
	Interval         time.Duration // Closed-state period after which counts reset (0 = never)
	MaxRequests      uint32        // Requests allowed through while half-open
}

// CircuitBreaker wraps a gobreaker.CircuitBreaker with metrics and logging.
type CircuitBreaker struct {
	name   string
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger

	stateGauge    prometheus.Gauge
	failuresCount prometheus.Counter
	tripsTotal    prometheus.Counter
}

// NewCircuitBreaker creates a circuit breaker. Metrics are registered with
// registry when it is non-nil.
func NewCircuitBreaker(name string, config Config, logger *zap.Logger, registry prometheus.Registerer) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &CircuitBreaker{
		name:   name,
		logger: logger,
		stateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "aiengine_circuit_breaker_state",
			Help:        "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
			ConstLabels: prometheus.Labels{"name": name},
		}),
		failuresCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "aiengine_circuit_breaker_failures_total",
			Help:        "Total number of failures recorded by the circuit breaker",
			ConstLabels: prometheus.Labels{"name": name},
		}),
		tripsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "aiengine_circuit_breaker_trips_total",
			Help:        "Total number of times the circuit breaker has tripped",
			ConstLabels: prometheus.Labels{"name": name},
		}),
	}

	if registry != nil {
		registry.MustRegister(c.stateGauge, c.failuresCount, c.tripsTotal)
	}

	threshold := config.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: c.onStateChange,
	})

	return c
}

func (c *CircuitBreaker) onStateChange(name string, from, to gobreaker.State) {
	state := fromGobreaker(to)
	c.stateGauge.Set(float64(state))

	if to == gobreaker.StateOpen {
		c.tripsTotal.Inc()
		c.logger.Warn("Circuit breaker tripped",
			zap.String("name", name),
			zap.String("from", fromGobreaker(from).String()),
		)
		return
	}

	c.logger.Info("Circuit breaker state changed",
		zap.String("name", name),
		zap.String("from", fromGobreaker(from).String()),
		zap.String("to", state.String()),
	)
}

// Execute runs f if the breaker allows it. A rejected call returns
// ErrCircuitOpen without invoking f.
func (c *CircuitBreaker) Execute(f func() error) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, f()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	if err != nil {
		c.failuresCount.Inc()
	}
	return err
}

// GetState returns the current state of the circuit breaker
func (c *CircuitBreaker) GetState() State {
	return fromGobreaker(c.cb.State())
}

// Name returns the breaker's name.
func (c *CircuitBreaker) Name() string {
	return c.name
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	case gobreaker.StateOpen:
		return StateOpen
	default:
		return StateClosed
	}
}
