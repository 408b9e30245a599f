// Package httpapi exposes the credit decision service over HTTP. It
// maps pipeline errors onto status codes, correlates every request
// with an id, and feeds the process-wide metrics aggregator.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-underwrite/internal/application"
	"github.com/ahrav/go-underwrite/internal/metrics"
	"github.com/ahrav/go-underwrite/internal/ports"
)

// Deps carries the collaborators the HTTP layer serves.
type Deps struct {
	// Service executes the scoring pipeline behind the prediction routes.
	Service *application.ScoringService

	// Aggregator backs GET /metrics and records every request's duration.
	Aggregator *metrics.Aggregator

	// Collector receives HTTP latency and status counters. Optional.
	Collector ports.MetricsCollector

	// Logger is the base logger; request-scoped loggers derive from it.
	Logger *slog.Logger
}

// Server wires the scoring service to HTTP routes with request
// correlation, rate limiting, and graceful shutdown.
type Server struct {
	cfg        application.ServerConfig
	service    *application.ScoringService
	aggregator *metrics.Aggregator
	collector  ports.MetricsCollector
	logger     *slog.Logger
	limiter    *rate.Limiter
	handler    http.Handler
}

// NewServer builds a server and registers all routes.
func NewServer(cfg application.ServerConfig, deps Deps) (*Server, error) {
	if deps.Service == nil {
		return nil, errors.New("httpapi: scoring service is required")
	}
	if deps.Aggregator == nil {
		return nil, errors.New("httpapi: metrics aggregator is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		service:    deps.Service,
		aggregator: deps.Aggregator,
		collector:  deps.Collector,
		logger:     logger,
	}
	if cfg.RateLimitPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateBurst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.Handle("GET /metrics/prometheus", promhttp.Handler())
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("POST /predict/batch", s.handlePredictBatch)
	mux.HandleFunc("POST /predict/explain", s.handlePredictExplain)

	s.handler = s.requestContext(s.recoverPanics(s.rateLimit(mux)))
	return s, nil
}

// Handler returns the fully wrapped route handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests within the configured grace period.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout(),
		WriteTimeout: s.cfg.WriteTimeout(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("server shutting down", "grace", s.cfg.ShutdownGrace())
		shutCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace())
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}
