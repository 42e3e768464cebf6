// Package http provides the HTTP API server, router assembly, and middleware.
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
	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/allisson/fieldvault/internal/audit/http"
	"github.com/allisson/fieldvault/internal/config"
	"github.com/allisson/fieldvault/internal/metrics"
	recordsHTTP "github.com/allisson/fieldvault/internal/records/http"
)

// Server represents the HTTP API server.
type Server struct {
	db         *sql.DB
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
}

// NewServer creates a new HTTP server. The router is assembled separately via
// SetupRouter so tests can register a minimal route set.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		addr:   fmt.Sprintf("%s:%d", host, port),
	}
}

// SetupRouter assembles the Gin router with all middleware and API routes.
// The meter provider may be nil when metrics are disabled.
func (s *Server) SetupRouter(
	cfg *config.Config,
	meterProvider metric.MeterProvider,
	recordHandler *recordsHTTP.RecordHandler,
	auditLogHandler *auditHTTP.AuditLogHandler,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	records := v1.Group("/records/:entity_type/:entity_id")
	records.POST("/encrypt", recordHandler.EncryptHandler)
	records.POST("/decrypt", recordHandler.DecryptHandler)
	records.POST("/changes", recordHandler.ChangesHandler)

	v1.GET("/audit-logs", auditLogHandler.ListHandler)

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, checking the
// database connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}
	status := "ready"
	statusCode := http.StatusOK

	if s.db == nil {
		components["database"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":     status,
		"components": components,
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
