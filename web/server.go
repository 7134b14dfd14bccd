package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultShutdownTimeout = 15 * time.Second

type Server struct {
	lg              *zap.Logger
	engine          *gin.Engine
	mode            string
	port            int64
	shutdownTimeout time.Duration
	middlewares     []gin.HandlerFunc
	routes          []func(gin.IRouter)
}

type Option func(*Server)

func defaultServer(lg *zap.Logger) *Server {
	return &Server{
		lg:              lg,
		mode:            gin.ReleaseMode,
		port:            8080,
		shutdownTimeout: defaultShutdownTimeout,
	}
}

func WithMode(mode string) Option {
	return func(s *Server) {
		s.mode = mode
	}
}

func WithPort(port int64) Option {
	return func(s *Server) {
		s.port = port
	}
}

func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	}
}

// WithCustomHandler adds a middleware, applied in the order given.
func WithCustomHandler(handler gin.HandlerFunc) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, handler)
	}
}

// WithRoutes registers handlers on the engine after all middlewares.
func WithRoutes(register func(gin.IRouter)) Option {
	return func(s *Server) {
		s.routes = append(s.routes, register)
	}
}

func NewServer(lg *zap.Logger, opts ...Option) *Server {
	if lg == nil {
		lg = zap.L()
	}
	s := defaultServer(lg)
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(s.mode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.middlewares...)
	s.engine.Use(defaultHandler())
	for _, register := range s.routes {
		register(s.engine)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.lg.Info("starting web server ...", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("fail to listenAndServe: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.lg.Info("shutdown web server ...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("fail to shutdown web server: %w", err)
	}
	s.lg.Info("web server exiting")
	return nil
}

// StartServer blocks until SIGINT or SIGTERM.
func StartServer(lg *zap.Logger, opts ...Option) {
	s := NewServer(lg, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		s.lg.Fatal("web server failed", zap.Error(err))
	}
}

func defaultHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch {
		case c.Request.URL.Path == "/":
			c.AbortWithStatus(http.StatusOK)
			return
		case strings.HasSuffix(c.Request.URL.Path, "/healthcheck"):
			c.AbortWithStatus(http.StatusOK)
			return
		}
	}
}
