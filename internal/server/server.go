package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/docket/internal/ecosystem"
)

// Resolver answers query API requests. Implemented by *ecosystem.Service.
type Resolver interface {
	Snapshot() *ecosystem.Ecosystem
}

// Server serves one Resolver.
type Server struct {
	resolver Resolver
	logger   *slog.Logger
	router   *gin.Engine

	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithShutdownTimeout bounds graceful shutdown in Run. Default: 5s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// New builds the router.
func New(r Resolver, opts ...Option) *Server {
	s := &Server{
		resolver:        r,
		logger:          slog.Default(),
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests())
	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(s.handleQuery)
	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped", "addr", addr)
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "packages": s.resolver.Snapshot().Registry().Len()})
}

func (s *Server) handleQuery(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Header("Allow", "GET, HEAD")
		c.String(http.StatusMethodNotAllowed, "method not allowed\n")
		return
	}

	resp, ok := s.resolver.Snapshot().Resolve(c.Request.URL.EscapedPath(), c.Request.URL.Query())
	if !ok {
		c.String(http.StatusNotFound, "not found\n")
		return
	}

	switch resp.Kind {
	case ecosystem.PermanentRedirect:
		c.Redirect(http.StatusMovedPermanently, resp.Location())
	case ecosystem.TemporaryRedirect:
		c.Redirect(http.StatusFound, resp.Location())
	default:
		if resp.Canonical != "" {
			c.Header("Link", `<`+resp.Canonical+`>; rel="canonical"`)
		}
		c.Data(http.StatusOK, resp.ContentType, []byte(resp.Body))
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
