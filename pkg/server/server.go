// Package server exposes the optimizer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/apimachinery/pkg/util/uuid"
	"k8s.io/klog/v2"

	"github.com/policyevo/policyevo/pkg/evolution"
	"github.com/policyevo/policyevo/pkg/metrics"
	"github.com/policyevo/policyevo/pkg/progress"
	"github.com/policyevo/policyevo/pkg/runner"
	"github.com/policyevo/policyevo/pkg/version"
)

// MaxBodyBytes bounds the size of a request body.
const MaxBodyBytes = 64 << 20

// Options configures the HTTP server.
type Options struct {
	BindAddress string
	// Publisher receives progress events of optimize runs when set.
	Publisher progress.Publisher
	Subject   string
}

// Server serves optimize and blend requests.
type Server struct {
	opts   Options
	engine *gin.Engine
}

// New builds the router.
func New(opts Options) *Server {
	metrics.Register()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{opts: opts, engine: r}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get().GitVersion})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/optimize", s.handle(runner.ModeOptimize))
	r.POST("/v1/blend", s.handle(runner.ModeBlend))

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handle(mode runner.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := klog.FromContext(ctx).WithValues("path", c.FullPath())

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, runner.ErrorResponse{Error: err.Error()})
			return
		}

		req, err := runner.ParseRequest(body, mode)
		if err == nil && req.Mode != mode {
			err = fmt.Errorf("%w: mode %q does not match the endpoint", runner.ErrInvalidRequest, req.Mode)
		}
		if err != nil {
			logger.V(2).Info("Rejected request", "err", err)
			c.JSON(runner.StatusCode(err), runner.ErrorResponse{Error: err.Error()})
			return
		}

		opts := []evolution.Option{evolution.WithObservers(progress.MetricsObserver{})}
		if s.opts.Publisher != nil {
			run := c.GetHeader("X-Request-Id")
			if run == "" {
				run = string(uuid.NewUUID())
			}
			opts = append(opts, evolution.WithObservers(progress.NewNATSObserver(s.opts.Publisher, s.opts.Subject, run)))
		}

		start := time.Now()
		resp, err := runner.Run(ctx, req, opts...)
		metrics.ObserveRun(string(req.Mode), err, time.Since(start))
		if err != nil {
			c.JSON(runner.StatusCode(err), runner.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger := klog.FromContext(ctx)
	srv := &http.Server{
		Addr:              s.opts.BindAddress,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving", "address", s.opts.BindAddress)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
