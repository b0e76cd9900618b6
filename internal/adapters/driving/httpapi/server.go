// Package httpapi serves the question-answering API over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Default server settings.
const (
	DefaultAddr           = ":8000"
	DefaultMaxUploadBytes = 50 << 20
	shutdownTimeout       = 10 * time.Second
)

// SessionCookie carries the session token between requests.
const SessionCookie = "session_id"

// Config holds server configuration.
type Config struct {
	// Addr is the listen address (default: ":8000").
	Addr string

	// BearerToken protects every route except /health. Empty disables auth.
	BearerToken string

	// MaxUploadBytes caps request bodies (default: 50 MiB).
	MaxUploadBytes int64
}

// Server exposes QA and analysis services under /api/v1.
type Server struct {
	qa       driving.QAService
	analysis driving.AnalysisService
	cfg      Config
	engine   *gin.Engine
}

// New creates a server and registers its routes.
func New(qa driving.QAService, analysis driving.AnalysisService, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{
		qa:       qa,
		analysis: analysis,
		cfg:      cfg,
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware())
	router.Use(corsMiddleware())

	v1 := router.Group("/api/v1")
	v1.GET("/health", s.health)

	api := v1.Group("")
	api.Use(bearerAuth(s.cfg.BearerToken))
	api.Use(bodySizeLimiter(s.cfg.MaxUploadBytes))
	api.POST("/upload", s.upload)
	api.POST("/run", s.run)
	api.POST("/summarize", s.summarize)
	api.POST("/risks", s.risks)
	api.POST("/ask", s.ask)
	api.GET("/cache/stats", s.cacheStats)

	return router
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", s.cfg.Addr)
		if s.cfg.BearerToken == "" {
			logger.Warn("No bearer token configured; API is unauthenticated")
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
