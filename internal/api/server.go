// Package api serves scans and the rule catalog over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clawshield/clawshield/internal/config"
	"github.com/clawshield/clawshield/internal/logging"
	"github.com/clawshield/clawshield/internal/observability"
	"github.com/clawshield/clawshield/internal/ratelimit"
)

const (
	RouteScan   = "/api/scan"
	RouteRules  = "/api/rules"
	RoutePacks  = "/api/packs"
	RouteHealth = "/healthz"
)

type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	limiter *ratelimit.Limiter

	log     *zap.SugaredLogger
	scanLog *logging.ScanLogger
	metrics *observability.Metrics
}

func New(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:     cfg,
		limiter: ratelimit.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		log:     logging.Nop(),
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	engine.Use(s.recovery(), requestID(), securityHeaders(), s.accessLog())
	engine.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Not found.")
	})
	engine.NoMethod(s.methodNotAllowed)

	engine.GET(RouteHealth, s.handleHealth)
	api := engine.Group("/api")
	api.POST("/scan", s.bodySizeLimit(cfg.Scan.MaxBodyBytes), s.rateLimit(), s.handleScan)
	api.GET("/rules", s.handleRules)
	api.GET("/packs", s.handlePacks)

	s.engine = engine
	return s, nil
}

func (s *Server) SetLogger(log *zap.SugaredLogger) {
	if log != nil {
		s.log = log
	}
}

func (s *Server) SetScanLogger(logger *logging.ScanLogger) {
	s.scanLog = logger
}

func (s *Server) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// SweepLimiter drops idle rate-limit buckets every interval until ctx ends.
func (s *Server) SweepLimiter(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.limiter.Sweep(now); n > 0 {
				s.log.Debugw("swept rate limit buckets", "removed", n)
			}
		}
	}
}
