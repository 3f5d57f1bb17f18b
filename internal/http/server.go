// Package http provides the API HTTP server, router, and middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	conversationHTTP "github.com/linguachat/encryption/internal/conversation/http"
	"github.com/linguachat/encryption/internal/metrics"
	prekeyHTTP "github.com/linguachat/encryption/internal/prekey/http"
)

// RouterConfig carries the transport-level settings for the API router.
type RouterConfig struct {
	CORSEnabled      bool
	CORSAllowOrigins string
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	MetricsProvider  *metrics.Provider
	MetricsNamespace string
}

// Handlers groups the API handlers mounted on the router.
type Handlers struct {
	Encryption *conversationHTTP.EncryptionHandler
	PreKey     *prekeyHTTP.PreKeyHandler
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The database handle is used by the
// readiness endpoint only.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin router with middleware and API routes.
func (s *Server) SetupRouter(cfg RouterConfig, handlers Handlers) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	if cfg.RateLimitEnabled {
		v1.Use(ActorRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	if handlers.Encryption != nil {
		v1.POST("/conversations/:id/encryption", handlers.Encryption.EnableHandler)
		v1.GET("/conversations/:id/encryption", handlers.Encryption.StatusHandler)
	}

	if handlers.PreKey != nil {
		v1.POST("/prekeys/bundle", handlers.PreKey.GenerateBundleHandler)
	}

	s.router = router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can take traffic. The
// database must answer a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
