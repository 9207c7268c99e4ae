// Package gateway calls the language model, or stands in for it when no usable
// credential is configured.
//
// Complete never fails: upstream errors come back as a Result of kind
// KindUpstreamFailure whose Text describes the error, so handlers can always
// answer with a 200 and the text.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teilomillet/aiengine/config"
	engineerrors "github.com/teilomillet/aiengine/errors"
	"github.com/teilomillet/aiengine/server/circuitbreaker"
	"github.com/teilomillet/aiengine/server/metrics"
	"github.com/teilomillet/aiengine/server/middleware"
	"github.com/teilomillet/aiengine/server/prompt"
)

const (
	// MockMarker starts every mock-mode response.
	MockMarker = " [MOCK AI RESPONSE] (No API Key detected): "

	// MockPromptChars is how much of the prompt a mock response echoes.
	MockPromptChars = 50

	// ErrorPrefix starts the text of every upstream failure.
	ErrorPrefix = "AI Error: "

	placeholderKey = "sk-..."
)

// Kind classifies a gateway result.
type Kind string

const (
	KindMock            Kind = "mock"
	KindCompletion      Kind = "completion"
	KindUpstreamFailure Kind = "upstream_failure"
)

// Result is the outcome of one Complete call. Err is set only for
// KindUpstreamFailure.
type Result struct {
	Kind Kind
	Text string
	Err  error
}

// Completer turns a prompt into response text.
type Completer interface {
	Complete(ctx context.Context, prompt string) Result
}

// Backend performs the actual model call.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// TokenCounter counts prompt tokens for metrics.
type TokenCounter interface {
	Count(text string) int
}

// Gateway is the Completer used by the HTTP handlers. A Gateway without a
// backend is in mock mode.
type Gateway struct {
	backend Backend
	model   string
	breaker *circuitbreaker.CircuitBreaker
	tokens  TokenCounter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithBackend replaces the backend selected from the configuration.
func WithBackend(b Backend) Option {
	return func(g *Gateway) { g.backend = b }
}

// WithCircuitBreaker guards backend calls with cb.
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(g *Gateway) { g.breaker = cb }
}

// WithTokenCounter records prompt token counts.
func WithTokenCounter(tc TokenCounter) Option {
	return func(g *Gateway) { g.tokens = tc }
}

// WithMetrics records gateway outcomes and latencies.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// IsMockCredential reports whether key is absent or an obvious placeholder.
func IsMockCredential(key string) bool {
	key = strings.TrimSpace(key)
	return key == "" || strings.Contains(key, placeholderKey)
}

// MockResponse returns the deterministic stand-in for a model answer.
func MockResponse(p string) string {
	return MockMarker + prompt.Truncate(p, MockPromptChars) + "..."
}

// New builds a gateway from the LLM configuration. The credential is read
// once here; a missing or placeholder key yields a mock-mode gateway and no
// backend is constructed.
func New(cfg config.LLMConfig, logger *zap.Logger, opts ...Option) (*Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Gateway{
		model:  cfg.Model,
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}

	if IsMockCredential(cfg.APIKey) {
		g.backend = nil
		logger.Warn("No usable API key configured, model gateway running in mock mode")
		return g, nil
	}

	if g.backend == nil {
		var err error
		switch cfg.Provider {
		case config.ProviderOpenAI:
			g.backend = NewOpenAIBackend(cfg)
		default:
			g.backend, err = NewGollmBackend(cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("create %s backend: %w", cfg.Provider, err)
		}
	}

	logger.Info("Model gateway ready",
		zap.String("backend", g.backend.Name()),
		zap.String("model", cfg.Model),
		zap.Bool("circuit_breaker", g.breaker != nil),
	)
	return g, nil
}

// Mock reports whether the gateway answers without calling a model.
func (g *Gateway) Mock() bool {
	return g.backend == nil
}

// Complete returns the model's answer to p.
func (g *Gateway) Complete(ctx context.Context, p string) Result {
	start := time.Now()
	g.observeTokens(p)

	var res Result
	if g.backend == nil {
		res = Result{Kind: KindMock, Text: MockResponse(p)}
	} else {
		res = g.call(ctx, p)
	}

	if g.metrics != nil {
		g.metrics.GatewayResults.WithLabelValues(string(res.Kind)).Inc()
		g.metrics.GatewayDuration.WithLabelValues(string(res.Kind)).Observe(time.Since(start).Seconds())
	}
	return res
}

func (g *Gateway) call(ctx context.Context, p string) Result {
	var text string
	run := func() error {
		var err error
		text, err = g.backend.Complete(ctx, p)
		return err
	}

	var err error
	if g.breaker != nil {
		err = g.breaker.Execute(run)
	} else {
		err = run()
	}

	if err != nil {
		engineerrors.Log(
			g.logger.With(zap.String("backend", g.backend.Name()), zap.String("model", g.model)),
			engineerrors.NewProviderError(middleware.GetRequestID(ctx), "model call failed", err),
		)
		return Result{Kind: KindUpstreamFailure, Text: ErrorPrefix + err.Error(), Err: err}
	}

	return Result{Kind: KindCompletion, Text: strings.TrimSpace(text)}
}

func (g *Gateway) observeTokens(p string) {
	if g.tokens == nil || g.metrics == nil {
		return
	}
	g.metrics.PromptTokens.WithLabelValues(g.model).Observe(float64(g.tokens.Count(p)))
}
