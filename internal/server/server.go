package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenthands/physiokg/internal/config"
	"github.com/agenthands/physiokg/internal/core/apperr"
	"github.com/agenthands/physiokg/internal/core/model"
	"github.com/agenthands/physiokg/internal/logger"
)

// Reasoner is the part of the engine the HTTP layer needs.
type Reasoner interface {
	Search(ctx context.Context, fragment string) ([]string, error)
	ListConditions(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, condition string) (*model.ReasoningRecord, error)
	Ping(ctx context.Context) error
}

type Server struct {
	Engine         Reasoner
	RequestTimeout time.Duration
	CORSOrigins    []string
	TrustedProxies []string
	RateLimit      *RateLimiter
	log            *logger.Logger
}

func NewServer(engine Reasoner, cfg config.ServerConfig, log *logger.Logger) *Server {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Server{
		Engine:         engine,
		RequestTimeout: timeout,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		RateLimit:      NewRateLimiter(cfg.RateLimitPerMinute),
		log:            log.With("component", "HTTPServer"),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	// condition names may contain an escaped '/'
	r.UseRawPath = true
	// with no trusted proxies ClientIP is the socket peer, never X-Forwarded-For
	if err := r.SetTrustedProxies(s.TrustedProxies); err != nil {
		s.log.Error("invalid trusted proxies, ignoring forwarded headers", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery(), RequestID(), AccessLog(s.log), HTTPMetrics())
	if len(s.CORSOrigins) > 0 {
		r.Use(CORS(s.CORSOrigins))
	}

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if s.RateLimit != nil {
		api.Use(s.RateLimit.Middleware())
	}
	api.GET("/conditions", s.ListConditions)
	api.GET("/search", s.Search)
	api.GET("/reasoning/:condition", s.Reasoning)

	return r
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.RequestTimeout)
}

func (s *Server) ListConditions(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	conditions, err := s.Engine.ListConditions(ctx)
	if err != nil {
		s.fail(c, err, "Failed to load conditions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"conditions": conditions})
}

func (s *Server) Search(c *gin.Context) {
	q := c.Query("q")
	if strings.TrimSpace(q) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	conditions, err := s.Engine.Search(ctx, q)
	if err != nil {
		s.fail(c, err, "Failed to search conditions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"conditions": conditions})
}

func (s *Server) Reasoning(c *gin.Context) {
	condition := c.Param("condition")
	if strings.TrimSpace(condition) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Condition is required"})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	rec, err := s.Engine.Generate(ctx, condition)
	if err != nil {
		s.fail(c, err, "Failed to generate reasoning")
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) Health(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.Engine.Ping(ctx); err != nil {
		s.log.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps a core error onto a status code. serverMsg is shown for store
// failures so internals do not leak to clients.
func (s *Server) fail(c *gin.Context, err error, serverMsg string) {
	status := StatusFor(err)
	msg := serverMsg
	switch status {
	case http.StatusBadRequest:
		msg = "Invalid request"
		var e *apperr.Error
		if errors.As(err, &e) && e.Err != nil {
			msg = e.Err.Error()
		}
	case http.StatusNotFound:
		msg = "Condition not found"
	case http.StatusGatewayTimeout:
		msg = "Request timed out"
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.UpstreamUnavailable:
		return http.StatusServiceUnavailable
	case apperr.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
