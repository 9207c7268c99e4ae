// Package server assembles the AI engine: configuration, model gateway,
// document extractor, handlers and router, served by one HTTP listener plus
// an optional metrics listener.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teilomillet/aiengine/config"
	"github.com/teilomillet/aiengine/server/circuitbreaker"
	"github.com/teilomillet/aiengine/server/extract"
	"github.com/teilomillet/aiengine/server/gateway"
	"github.com/teilomillet/aiengine/server/handlers"
	"github.com/teilomillet/aiengine/server/metrics"
	"github.com/teilomillet/aiengine/server/routing"
)

// Server represents the HTTP server
type Server struct {
	cfg           *config.Config
	httpServer    *http.Server
	metricsServer *http.Server
	metrics       *metrics.Metrics
	watcher       config.Watcher
	level         zap.AtomicLevel
	logger        *zap.Logger

	completer gateway.Completer
	extractor extract.Extractor
}

// Option configures a Server.
type Option func(*Server)

// WithWatcher applies live configuration changes from w.
func WithWatcher(w config.Watcher) Option {
	return func(s *Server) { s.watcher = w }
}

// WithAtomicLevel lets configuration reloads change the log level.
func WithAtomicLevel(level zap.AtomicLevel) Option {
	return func(s *Server) { s.level = level }
}

// WithCompleter replaces the gateway built from the configuration.
func WithCompleter(c gateway.Completer) Option {
	return func(s *Server) { s.completer = c }
}

// WithExtractor replaces the PDF extractor.
func WithExtractor(x extract.Extractor) Option {
	return func(s *Server) { s.extractor = x }
}

// NewServer builds a server from cfg.
func NewServer(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		metrics: metrics.NewMetrics(),
		level:   zap.NewAtomicLevel(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.completer == nil {
		g, err := s.newGateway()
		if err != nil {
			return nil, err
		}
		s.completer = g
	}
	if s.extractor == nil {
		s.extractor = extract.NewPDFExtractor(logger, s.metrics)
	}

	h := handlers.New(s.completer, s.extractor, handlers.Config{
		Port:            cfg.Server.Port,
		MaxUploadMemory: cfg.Server.MaxUploadMemory,
	}, logger)

	s.httpServer = &http.Server{
		Addr:           cfg.Server.Addr(),
		Handler:        routing.NewRouter(cfg, h, s.metrics, logger),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	if cfg.Metrics.Enabled {
		s.metricsServer = &http.Server{
			Addr:    net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Metrics.Port)),
			Handler: routing.NewMetricsMux(s.metrics),
		}
	}

	return s, nil
}

func (s *Server) newGateway() (*gateway.Gateway, error) {
	llmCfg := s.cfg.LLM
	opts := []gateway.Option{gateway.WithMetrics(s.metrics)}

	if cb := llmCfg.CircuitBreaker; cb.Enabled {
		opts = append(opts, gateway.WithCircuitBreaker(circuitbreaker.NewCircuitBreaker(
			"llm",
			circuitbreaker.Config{
				FailureThreshold: cb.FailureThreshold,
				Timeout:          cb.Timeout,
				Interval:         cb.Interval,
				MaxRequests:      cb.MaxRequests,
			},
			s.logger,
			s.metrics.Registry(),
		)))
	}

	if s.cfg.Metrics.CountTokens {
		tc, err := gateway.NewTokenCounter(llmCfg.Model)
		if err != nil {
			s.logger.Warn("Token counting disabled", zap.Error(err))
		} else {
			opts = append(opts, gateway.WithTokenCounter(tc))
		}
	}

	g, err := gateway.New(llmCfg, s.logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("create model gateway: %w", err)
	}
	return g, nil
}

// Start binds the configured listeners and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}

	var metricsLn net.Listener
	if s.metricsServer != nil {
		metricsLn, err = net.Listen("tcp", s.metricsServer.Addr)
		if err != nil {
			ln.Close()
			return fmt.Errorf("listen on %s: %w", s.metricsServer.Addr, err)
		}
	}

	return s.Serve(ctx, ln, metricsLn)
}

// Serve serves on the given listeners until ctx is cancelled or a listener
// fails, then shuts down gracefully. metricsLn may be nil.
func (s *Server) Serve(ctx context.Context, ln, metricsLn net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("AI engine listening", zap.String("address", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.metricsServer != nil && metricsLn != nil {
		g.Go(func() error {
			s.logger.Info("Metrics listening", zap.String("address", metricsLn.Addr().String()))
			if err := s.metricsServer.Serve(metricsLn); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	if s.watcher != nil {
		g.Go(func() error {
			s.watchConfig(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down server")
	err := s.httpServer.Shutdown(ctx)
	if s.metricsServer != nil {
		err = stderrors.Join(err, s.metricsServer.Shutdown(ctx))
	}
	if err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	return nil
}

func (s *Server) watchConfig(ctx context.Context) {
	updates := s.watcher.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-updates:
			if !ok {
				return
			}
			s.applyConfig(cfg)
		}
	}
}

// applyConfig applies the settings that can change without a restart. Only
// the log level is live; everything else is reported and ignored.
func (s *Server) applyConfig(cfg *config.Config) {
	lvl, err := cfg.Logging.ZapLevel()
	if err != nil {
		s.logger.Warn("Ignoring invalid log level from reloaded config", zap.Error(err))
	} else if lvl != s.level.Level() {
		s.level.SetLevel(lvl)
		s.logger.Info("Log level updated", zap.String("level", lvl.String()))
	}

	if cfg.Server != s.cfg.Server || cfg.LLM != s.cfg.LLM || cfg.Metrics != s.cfg.Metrics || cfg.CORS != s.cfg.CORS {
		s.logger.Warn("Configuration change requires a restart to take effect")
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}
