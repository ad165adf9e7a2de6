package httpserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/PratikDhanave/dtconn-relay/internal/auth"
	"github.com/PratikDhanave/dtconn-relay/internal/config"
	"github.com/PratikDhanave/dtconn-relay/internal/handlers"
	"github.com/PratikDhanave/dtconn-relay/internal/warehouse"
)

const requestIDHeader = "X-Request-ID"

// NewRouter wires the probes and the ingestion endpoint.
// Public: /health, /ready
// Signed: POST /dtconn
func NewRouter(v *auth.Verifier, wh warehouse.Warehouse, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the warehouse table is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := wh.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterEventRoutes(r, v, wh)

	return r
}

// RequestLogger logs every completed request with a level derived from the
// status class: 2xx/3xx info, 4xx warn, 5xx error.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"request_id", requestID,
		}
		if err := c.Errors.Last(); err != nil {
			attrs = append(attrs, "error", err.Error())
		}

		logger.Log(c.Request.Context(), levelFor(status), c.Request.Method+" "+c.Request.URL.Path, attrs...)
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Server is the HTTP lifecycle: Running until ctx is cancelled, then Draining
// until in-flight requests finish, then done. It is not restartable.
type Server struct {
	http            *http.Server
	log             *slog.Logger
	shutdownTimeout time.Duration
}

// New builds a server listening on cfg.Addr().
func New(cfg config.Config, handler http.Handler, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log:             logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run binds the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.http.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or the accept loop
// fails. On cancellation the listener is closed and Serve waits for accepted
// requests to complete, up to the shutdown timeout, before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.http.Serve(ln)
	}()
	s.log.Info("starting http server", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		s.log.Error("server error", "error", err)
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
		s.log.Info("interrupt received, draining in-flight requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}

	s.log.Info("Shutting down, thanks for now! :)")
	return nil
}
