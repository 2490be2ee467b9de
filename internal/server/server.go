// Package server exposes the render pipeline and the model prober over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhpenta/planviz"
	"github.com/mhpenta/planviz/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Options configures the HTTP server.
type Options struct {
	Pipeline *planviz.Pipeline
	Prober   *planviz.Prober

	// Metrics, when set, records HTTP metrics and serves /metrics
	Metrics *metrics.Collector

	Logger *slog.Logger

	// ServiceName names the otelgin spans. Empty disables the tracing middleware.
	ServiceName string

	// MaxUploadBytes bounds each multipart request. Zero means no extra limit.
	MaxUploadBytes int64
}

// Server is the gin HTTP front end.
type Server struct {
	engine   *gin.Engine
	pipeline *planviz.Pipeline
	prober   *planviz.Prober
	metrics  *metrics.Collector
	logger   *slog.Logger
	opts     Options
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		engine:   gin.New(),
		pipeline: opts.Pipeline,
		prober:   opts.Prober,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		opts:     opts,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupMiddleware() {
	s.engine.Use(Recovery(s.logger))
	s.engine.Use(RequestID())
	s.engine.Use(CORS())
	if s.opts.ServiceName != "" {
		s.engine.Use(Trace(s.opts.ServiceName))
	}
	s.engine.Use(AccessLog(s.logger, s.metrics))
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.health)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.engine.Group("/v1")
	{
		v1.POST("/render", s.render)
		v1.POST("/render/stream", s.renderStream)
		v1.GET("/models", s.listModels)
		v1.POST("/models/probe", s.probeModels)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
