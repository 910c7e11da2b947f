// Package stressserver implements the synthetic load target: a web server
// whose endpoints deliberately burn CPU, memory, and bandwidth in realistic
// proportions so load balancers have something meaningful to spread.
package stressserver

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-kir/web-stress/internal/config"
)

// Server hosts the stress endpoints.
type Server struct {
	cfg     config.ServerConfig
	logger  *zap.Logger
	tracker *Tracker
	engine  *gin.Engine
}

// New builds the server and its routes. When no server id is configured the
// hostname is used, matching how replicas identify themselves in a swarm.
func New(cfg config.ServerConfig, logger *zap.Logger) *Server {
	serverID := cfg.ServerID
	if serverID == "" {
		if hostname, err := os.Hostname(); err == nil {
			serverID = hostname
		} else {
			serverID = "unknown-host"
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		cfg:     cfg,
		logger:  logger.Named("stressserver"),
		tracker: NewTracker(serverID),
		engine:  engine,
	}

	engine.Use(gin.Recovery())
	engine.Use(s.accessLog())
	s.routes()
	return s
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler { return s.engine }

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.engine,
		// No write timeout: the streaming and extreme endpoints legitimately
		// take as long as the caller asked them to.
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Stress server listening",
			zap.String("addr", s.cfg.Addr),
			zap.String("server_id", s.tracker.ServerID()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down stress server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// accessLog logs each request at debug level so steady-state traffic does
// not drown the console.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func (s *Server) routes() {
	// Realistic application endpoints.
	s.engine.GET("/", s.homepage)
	s.engine.GET("/api/data", s.apiData)
	s.engine.GET("/dashboard", s.dashboard)
	s.engine.GET("/search", s.search)
	s.engine.GET("/product/:id", s.product)
	s.engine.GET("/media/:id", s.media)
	// Checkout accepts GET as well: simulated shoppers navigate to it like
	// any other page.
	s.engine.GET("/checkout", s.checkout)
	s.engine.POST("/checkout", s.checkout)

	// Parameterized stress endpoints.
	s.engine.GET("/stress", s.stress)
	s.engine.GET("/stress/profile/:profile", s.stressProfile)

	// Extreme load endpoints.
	s.engine.GET("/extreme/cpu", s.extremeCPU)
	s.engine.GET("/extreme/memory", s.extremeMemory)
	s.engine.GET("/extreme/cpu-mem", s.extremeCPUMem)
	s.engine.GET("/extreme/all", s.extremeAll)

	// Monitoring endpoints for the load balancer and the operator.
	s.engine.GET("/health", s.health)
	s.engine.GET("/ready", s.ready)
	s.engine.GET("/metrics", s.metrics)
	s.engine.GET("/request-stats", s.requestStats)
}
