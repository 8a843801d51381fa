package gateway

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/common/config"
	"github.com/ieltsly/speaking-results/pkg/metrics"
	"github.com/ieltsly/speaking-results/pkg/version"
)

// Server is the reverse proxy in front of the scoring API plus the
// static host for the results front end. It carries no business
// logic: /api/* is forwarded upstream with the prefix stripped and
// every other path falls back to the single-page entry file.
type Server struct {
	logger  *zap.Logger
	cfg     *config.GatewayConfig
	metrics *metrics.Metrics
}

// NewServer creates a gateway server. metrics may be nil when metrics
// are disabled.
func NewServer(logger *zap.Logger, cfg *config.GatewayConfig, m *metrics.Metrics) *Server {
	return &Server{
		logger:  logger.Named("gateway"),
		cfg:     cfg,
		metrics: m,
	}
}

// RegisterRoutes wires middleware and routes onto router.
func (s *Server) RegisterRoutes(router *gin.Engine) error {
	router.Use(
		s.requestIDMiddleware(),
		s.loggerMiddleware(),
		s.recoveryMiddleware(),
		s.corsMiddleware(),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get()})
	})

	if s.metrics != nil {
		router.GET("/metrics", s.metrics.Handler())
	}

	apiHandler, err := s.apiHandler()
	if err != nil {
		return err
	}
	router.Any("/api/*path", apiHandler)

	// SPA fallback: serve real static assets when they exist,
	// otherwise the entry page.
	router.NoRoute(s.staticHandler())

	return nil
}

// apiHandler proxies to the configured upstream, or answers 404 JSON
// when no upstream is configured and that behavior is enabled.
func (s *Server) apiHandler() (gin.HandlerFunc, error) {
	if s.cfg.Upstream == "" {
		if !s.cfg.NotFoundJSON {
			return nil, errNoUpstream
		}
		return func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "API route not found", "path": c.Request.URL.Path})
		}, nil
	}
	return s.newUpstreamProxy()
}

func (s *Server) staticHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.URL.Path == "/api" {
			c.JSON(http.StatusNotFound, gin.H{"error": "API route not found", "path": c.Request.URL.Path})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
			return
		}

		if s.cfg.StaticDir != "" {
			candidate := filepath.Join(s.cfg.StaticDir, filepath.Clean("/"+c.Request.URL.Path))
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				c.File(candidate)
				return
			}
			c.File(filepath.Join(s.cfg.StaticDir, s.cfg.IndexFile))
			return
		}

		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	}
}
